package listing

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/models"
	"jobboard/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func renderPage[T any](db *gorm.DB, q Query) *gorm.Statement {
	var model T
	var out []T
	return q.Page(db.Model(&model)).Find(&out).Statement
}

func TestBuildJobQuery_SQL(t *testing.T) {
	db := dryRunDB(t)
	cat := uint(4)

	stmt := renderPage[models.Job](db, BuildJobQuery(JobFilter{
		Keyword:    "go_dev%",
		Location:   "harare",
		CategoryID: &cat,
		JobType:    models.JobTypeContract,
		Page:       2,
	}))
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "jobs.status = $1")
	assert.Contains(t, sql, `(jobs.title ILIKE $2 ESCAPE '\' OR jobs.description ILIKE $3 ESCAPE '\')`)
	assert.Contains(t, sql, "jobs.location ILIKE $4")
	assert.Contains(t, sql, "jobs.category_id = $5")
	assert.Contains(t, sql, "jobs.job_type = $6")
	assert.Contains(t, sql, "ORDER BY jobs.is_featured DESC,jobs.created_at DESC,jobs.id DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
	assert.NotContains(t, sql, "go_dev", "user input must only travel as a bind variable")

	assert.Equal(t, models.JobStatusActive, stmt.Vars[0])
	assert.Equal(t, `%go\_dev\%%`, stmt.Vars[1])
	assert.Contains(t, stmt.Vars, 10)
}

func TestBuildJobQuery_SortKeys(t *testing.T) {
	db := dryRunDB(t)

	sql := renderPage[models.Job](db, BuildJobQuery(JobFilter{Sort: SortSalary})).SQL.String()
	assert.Contains(t, sql, "COALESCE(jobs.salary_max, jobs.salary_min, 0) DESC")

	sql = renderPage[models.Job](db, BuildJobQuery(JobFilter{Sort: SortDeadline})).SQL.String()
	assert.Contains(t, sql, "jobs.deadline ASC")

	sql = renderPage[models.Job](db, BuildJobQuery(JobFilter{Sort: "bogus"})).SQL.String()
	assert.Contains(t, sql, "jobs.is_featured DESC")
}

func TestBuildApplicationQuery_SQL(t *testing.T) {
	db := dryRunDB(t)
	company := uint(12)

	q, err := BuildApplicationQuery(authz.EmployerScope(3, &company), ApplicationFilter{Status: models.ApplicationStatusShortlisted})
	require.NoError(t, err)

	sql := renderPage[models.Application](db, q).SQL.String()
	assert.Contains(t, sql, "SELECT applications.* FROM")
	assert.Contains(t, sql, "JOIN jobs ON jobs.id = applications.job_id")
	assert.Contains(t, sql, "jobs.company_id = $1")
	assert.Contains(t, sql, "applications.status = $2")
	assert.Contains(t, sql, "ORDER BY applications.applied_at DESC")
}

func TestBuildApplicationQuery_ScopeRules(t *testing.T) {
	_, err := BuildApplicationQuery(authz.Anonymous(), ApplicationFilter{})
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = BuildApplicationQuery(authz.EmployerScope(3, nil), ApplicationFilter{})
	assert.True(t, models.IsCode(err, models.CodeProfileIncomplete))

	_, err = BuildManagedJobQuery(authz.JobSeekerScope(4, nil), ManagedJobFilter{})
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = BuildManagedJobQuery(authz.EmployerScope(3, nil), ManagedJobFilter{})
	assert.True(t, models.IsCode(err, models.CodeProfileIncomplete))
}

func TestParseFilters_InvalidValuesMeanNoFilter(t *testing.T) {
	v := url.Values{}
	v.Set("keyword", "  engineer ")
	v.Set("category", "abc")
	v.Set("job_type", "astronaut")
	v.Set("sort", "random")
	v.Set("page", "-4")

	f := ParseJobFilter(v.Get)
	assert.Equal(t, "engineer", f.Keyword)
	assert.Nil(t, f.CategoryID)
	assert.Empty(t, f.JobType)
	assert.Equal(t, SortDefault, f.Sort)
	assert.Equal(t, 1, f.Page)

	v = url.Values{}
	v.Set("status", "archived")
	v.Set("job_id", "0")
	v.Set("page", "3")
	af := ParseApplicationFilter(v.Get)
	assert.Empty(t, af.Status)
	assert.Nil(t, af.JobID)
	assert.Equal(t, 3, af.Page)

	v.Set("status", "Shortlisted")
	v.Set("job_id", "7")
	af = ParseApplicationFilter(v.Get)
	assert.Equal(t, models.ApplicationStatusShortlisted, af.Status)
	require.NotNil(t, af.JobID)
	assert.Equal(t, uint(7), *af.JobID)

	mf := ParseManagedJobFilter(url.Values{"status": {"nope"}}.Get)
	assert.Empty(t, mf.Status)

	jt := ParseJobFilter(url.Values{"job_type": {"Full-Time"}, "sort": {"salary"}}.Get)
	assert.Equal(t, models.JobTypeFullTime, jt.JobType)
	assert.Equal(t, SortSalary, jt.Sort)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(1))
	assert.Equal(t, 1, TotalPages(10))
	assert.Equal(t, 2, TotalPages(11))
	assert.Equal(t, 2, TotalPages(20))
}

func TestFetchJobs_OnlyActiveRowsAndMatchingTotals(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme")
	it := models.Category{Name: "IT"}
	require.NoError(t, db.Create(&it).Error)

	statuses := []models.JobStatus{
		models.JobStatusActive, models.JobStatusPending, models.JobStatusInactive,
		models.JobStatusFilled, models.JobStatusExpired,
	}
	locations := []string{"Harare", "Bulawayo"}
	for i := 0; i < 30; i++ {
		opts := []testutil.JobOption{
			testutil.WithStatus(statuses[i%len(statuses)]),
			testutil.WithLocation(locations[i%2]),
		}
		if i%3 == 0 {
			opts = append(opts, testutil.WithCategory(it.ID))
		}
		title := fmt.Sprintf("Go Developer %d", i)
		if i%4 == 0 {
			title = fmt.Sprintf("Accountant %d", i)
		}
		testutil.CreateJob(t, db, acme.ID, title, opts...)
	}

	filters := []JobFilter{
		{},
		{Keyword: "developer"},
		{Keyword: "ACCOUNTANT"},
		{Location: "harare"},
		{CategoryID: &it.ID},
		{Keyword: "go", Location: "bulawayo", CategoryID: &it.ID},
		{Keyword: "nothing-matches"},
	}

	for _, f := range filters {
		res, err := Fetch[models.Job](ctx, db, BuildJobQuery(f))
		require.NoError(t, err)

		var expected int64
		require.NoError(t, BuildJobQuery(f).Where(db.Model(&models.Job{})).Count(&expected).Error)
		assert.Equal(t, expected, res.Total)

		var all []models.Job
		require.NoError(t, BuildJobQuery(f).Where(db.Model(&models.Job{})).Find(&all).Error)
		assert.Len(t, all, int(expected))

		for _, j := range all {
			assert.Equal(t, models.JobStatusActive, j.Status)
		}
		assert.LessOrEqual(t, len(res.Items), PageSize)
	}
}

func TestFetchJobs_PageBeyondEnd(t *testing.T) {
	db := testutil.NewDB(t)
	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme")
	for i := 0; i < 15; i++ {
		testutil.CreateJob(t, db, acme.ID, fmt.Sprintf("Job %d", i))
	}

	res, err := Fetch[models.Job](context.Background(), db, BuildJobQuery(JobFilter{Page: 3}))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, int64(15), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 3, res.Page)

	res, err = Fetch[models.Job](context.Background(), db, BuildJobQuery(JobFilter{Page: 2}))
	require.NoError(t, err)
	assert.Len(t, res.Items, 5)
}

func TestFetchJobs_HugePageIsEmpty(t *testing.T) {
	db := testutil.NewDB(t)
	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme")
	for i := 0; i < 15; i++ {
		testutil.CreateJob(t, db, acme.ID, fmt.Sprintf("Job %d", i))
	}

	for _, raw := range []string{"922337203685477582", "99999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			f := ParseJobFilter(url.Values{"page": {raw}}.Get)
			assert.Equal(t, MaxPage, f.Page)

			q := BuildJobQuery(f)
			assert.Greater(t, q.Offset(), 0)

			res, err := Fetch[models.Job](context.Background(), db, q)
			require.NoError(t, err)
			assert.Empty(t, res.Items)
			assert.Equal(t, int64(15), res.Total)
			assert.Equal(t, 2, res.TotalPages)
		})
	}

	assert.Equal(t, MaxPage, NormalizePage(MaxPage+1))
}

func TestFetchJobs_FeaturedFirst(t *testing.T) {
	db := testutil.NewDB(t)
	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme")
	now := time.Now()

	testutil.CreateJob(t, db, acme.ID, "Newest", testutil.WithCreatedAt(now))
	testutil.CreateJob(t, db, acme.ID, "Featured old", testutil.Featured(), testutil.WithCreatedAt(now.Add(-48*time.Hour)))
	testutil.CreateJob(t, db, acme.ID, "Older", testutil.WithCreatedAt(now.Add(-24*time.Hour)))

	res, err := Fetch[models.Job](context.Background(), db, BuildJobQuery(JobFilter{}))
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Featured old", res.Items[0].Title)
	assert.Equal(t, "Newest", res.Items[1].Title)
	assert.Equal(t, "Older", res.Items[2].Title)

	res, err = Fetch[models.Job](context.Background(), db, BuildJobQuery(JobFilter{Sort: SortNewest}))
	require.NoError(t, err)
	assert.Equal(t, "Newest", res.Items[0].Title)
}

func TestFetchCompanies_ActiveJobCounts(t *testing.T) {
	db := testutil.NewDB(t)
	_, zeta := testutil.CreateEmployer(t, db, "zeta", "Zeta Mining")
	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme Software")

	testutil.CreateJob(t, db, acme.ID, "A")
	testutil.CreateJob(t, db, acme.ID, "B")
	testutil.CreateJob(t, db, acme.ID, "C", testutil.WithStatus(models.JobStatusFilled))
	testutil.CreateJob(t, db, zeta.ID, "D", testutil.WithStatus(models.JobStatusPending))

	res, err := Fetch[models.Company](context.Background(), db, BuildCompanyQuery(CompanyFilter{}))
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Acme Software", res.Items[0].Name)
	assert.Equal(t, int64(2), res.Items[0].ActiveJobs)
	assert.Equal(t, int64(0), res.Items[1].ActiveJobs)

	res, err = Fetch[models.Company](context.Background(), db, BuildCompanyQuery(CompanyFilter{Search: "mining"}))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, zeta.ID, res.Items[0].ID)
}

func TestFetchApplications_ScopedRows(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme")
	_, other := testutil.CreateEmployer(t, db, "other", "Other")
	acmeJob := testutil.CreateJob(t, db, acme.ID, "Backend Engineer")
	otherJob := testutil.CreateJob(t, db, other.ID, "Nurse")

	u1, s1 := testutil.CreateJobSeeker(t, db, "seeker1")
	u2, s2 := testutil.CreateJobSeeker(t, db, "seeker2")
	u3 := testutil.CreateUser(t, db, "noprofile", models.RoleJobSeeker)

	now := time.Now()
	testutil.CreateApplication(t, db, acmeJob.ID, u1, s1, now.Add(-time.Hour))
	testutil.CreateApplication(t, db, acmeJob.ID, u2, s2, now)
	testutil.CreateApplication(t, db, otherJob.ID, u1, s1, now.Add(-2*time.Hour))
	testutil.CreateApplication(t, db, otherJob.ID, u3, nil, now)

	q, err := BuildApplicationQuery(authz.EmployerScope(0, &acme.ID), ApplicationFilter{})
	require.NoError(t, err)
	res, err := Fetch[models.Application](ctx, db, q, "Job")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, u2.ID, res.Items[0].UserID, "newest first")
	for _, a := range res.Items {
		assert.Equal(t, acmeJob.ID, a.JobID)
		require.NotNil(t, a.Job)
		assert.Equal(t, "Backend Engineer", a.Job.Title)
	}

	q, err = BuildApplicationQuery(authz.JobSeekerScope(u1.ID, &s1.ID), ApplicationFilter{})
	require.NoError(t, err)
	res, err = Fetch[models.Application](ctx, db, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	q, err = BuildApplicationQuery(authz.JobSeekerScope(u3.ID, nil), ApplicationFilter{})
	require.NoError(t, err)
	res, err = Fetch[models.Application](ctx, db, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	q, err = BuildApplicationQuery(authz.AdminScope(1), ApplicationFilter{Query: "nurse"})
	require.NoError(t, err)
	res, err = Fetch[models.Application](ctx, db, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
}

func TestFetchManagedJobs_OwnCompanyAllStatuses(t *testing.T) {
	db := testutil.NewDB(t)
	_, acme := testutil.CreateEmployer(t, db, "acme", "Acme")
	_, other := testutil.CreateEmployer(t, db, "other", "Other")

	testutil.CreateJob(t, db, acme.ID, "Active role")
	testutil.CreateJob(t, db, acme.ID, "Pending role", testutil.WithStatus(models.JobStatusPending))
	testutil.CreateJob(t, db, other.ID, "Not mine")

	q, err := BuildManagedJobQuery(authz.EmployerScope(0, &acme.ID), ManagedJobFilter{})
	require.NoError(t, err)
	res, err := Fetch[models.Job](context.Background(), db, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	q, err = BuildManagedJobQuery(authz.EmployerScope(0, &acme.ID), ManagedJobFilter{Status: models.JobStatusPending})
	require.NoError(t, err)
	res, err = Fetch[models.Job](context.Background(), db, q)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Pending role", res.Items[0].Title)

	q, err = BuildManagedJobQuery(authz.AdminScope(1), ManagedJobFilter{Query: "ROLE"})
	require.NoError(t, err)
	res, err = Fetch[models.Job](context.Background(), db, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
}
