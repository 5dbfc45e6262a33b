// Package seed fills a development database with categories and demo data.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/middleware"
	"jobboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Password123!"

// Options controls the size of the demo data set.
type Options struct {
	Employers        int
	JobsPerEmployer  int
	JobSeekers       int
	ApplicationsEach int
	Clean            bool
	// RandSeed makes the generated data reproducible; zero uses the clock.
	RandSeed int64
}

// DefaultOptions is a small but browsable data set.
func DefaultOptions() Options {
	return Options{Employers: 8, JobsPerEmployer: 5, JobSeekers: 20, ApplicationsEach: 3}
}

// Summary reports what Seed created.
type Summary struct {
	Categories   int64
	Employers    int
	Jobs         int
	JobSeekers   int
	Applications int
}

// Seed inserts categories plus demo employers, jobs, job seekers and
// applications. Demo users share DemoPassword.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Clean {
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	sum := &Summary{}
	n, err := Categories(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	sum.Categories = n

	f, err := NewFactory(db, opts.RandSeed)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, err
	}

	var jobs []*models.Job
	for i := 0; i < opts.Employers; i++ {
		_, company, err := f.Employer(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("employer %d: %w", i, err)
		}
		sum.Employers++
		for j := 0; j < opts.JobsPerEmployer; j++ {
			job, err := f.Job(ctx, company, categories)
			if err != nil {
				return nil, fmt.Errorf("job for company %d: %w", company.ID, err)
			}
			jobs = append(jobs, job)
			sum.Jobs++
		}
	}

	var active []*models.Job
	for _, j := range jobs {
		if j.Status == models.JobStatusActive {
			active = append(active, j)
		}
	}

	for i := 0; i < opts.JobSeekers; i++ {
		user, profile, err := f.JobSeeker(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("job seeker %d: %w", i, err)
		}
		sum.JobSeekers++

		for _, job := range f.pick(active, opts.ApplicationsEach) {
			created, err := f.Application(ctx, job, user, profile)
			if err != nil {
				return nil, fmt.Errorf("application: %w", err)
			}
			if created {
				sum.Applications++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		"categories", sum.Categories, "employers", sum.Employers, "jobs", sum.Jobs,
		"job_seekers", sum.JobSeekers, "applications", sum.Applications)
	return sum, nil
}

func clearData(ctx context.Context, db *gorm.DB) error {
	tables := []string{
		"applications", "saved_jobs", "education", "experience", "jobs",
		"job_seekers", "companies", "contact_messages",
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Exec("DELETE FROM " + t).Error; err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		return tx.Where("role <> ?", models.RoleAdmin).Delete(&models.User{}).Error
	})
}

// Factory builds and persists demo entities.
type Factory struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	password string
}

// NewFactory hashes DemoPassword once and returns a Factory. A zero seed
// uses the clock.
func NewFactory(db *gorm.DB, seed int64) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	return &Factory{db: db, faker: gofakeit.New(seed), password: string(hash)}, nil
}

func (f *Factory) user(ctx context.Context, username string, role models.Role) (*models.User, error) {
	u := &models.User{
		Username: username,
		Email:    username + "@demo.jobboard.local",
		Password: f.password,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	return u, f.db.WithContext(ctx).Create(u).Error
}

// Employer creates employer number i with a company.
func (f *Factory) Employer(ctx context.Context, i int) (*models.User, *models.Company, error) {
	u, err := f.user(ctx, fmt.Sprintf("employer_%03d", i+1), models.RoleEmployer)
	if err != nil {
		return nil, nil, err
	}
	name := f.faker.Company()
	c := &models.Company{
		UserID:      u.ID,
		Name:        name,
		Industry:    f.faker.RandomString([]string{"Technology", "Mining", "Finance", "Retail", "Healthcare", "Agriculture"}),
		Description: f.faker.Paragraph(1, 3, 12, " "),
		Website:     "https://" + strings.ToLower(strings.Join(strings.Fields(f.faker.Word()), "")) + ".example.com",
		Email:       u.Email,
		Phone:       f.faker.Phone(),
		Address:     f.faker.Street(),
		Location:    f.faker.City(),
	}
	if err := f.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, nil, err
	}
	return u, c, nil
}

// Job creates a job for company. Most seeded jobs are active.
func (f *Factory) Job(ctx context.Context, company *models.Company, categories []models.Category) (*models.Job, error) {
	minSalary := int64(f.faker.Number(300, 2000)) * 10
	maxSalary := minSalary + int64(f.faker.Number(50, 300))*10
	deadline := time.Now().UTC().AddDate(0, 0, f.faker.Number(7, 60)).Truncate(24 * time.Hour)

	status := models.JobStatusActive
	switch f.faker.Number(1, 10) {
	case 1:
		status = models.JobStatusPending
	case 2:
		status = models.JobStatusFilled
	}

	job := &models.Job{
		CompanyID:    company.ID,
		Title:        f.faker.JobTitle(),
		Description:  f.faker.Paragraph(2, 4, 14, "\n\n"),
		Requirements: f.faker.Paragraph(1, 4, 8, "\n"),
		Location:     company.Location,
		JobType:      models.JobTypes[f.faker.Number(0, len(models.JobTypes)-1)],
		SalaryMin:    &minSalary,
		SalaryMax:    &maxSalary,
		Deadline:     &deadline,
		IsFeatured:   f.faker.Number(1, 8) == 1,
		Status:       status,
	}
	if len(categories) > 0 {
		id := categories[f.faker.Number(0, len(categories)-1)].ID
		job.CategoryID = &id
	}
	if err := f.db.WithContext(ctx).Omit("Company", "Category").Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// JobSeeker creates job seeker number i with a profile and one entry each of
// education and experience.
func (f *Factory) JobSeeker(ctx context.Context, i int) (*models.User, *models.JobSeeker, error) {
	u, err := f.user(ctx, fmt.Sprintf("seeker_%03d", i+1), models.RoleJobSeeker)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now().UTC().AddDate(-f.faker.Number(3, 10), 0, 0).Truncate(24 * time.Hour)
	end := start.AddDate(f.faker.Number(1, 3), 0, 0)

	p := &models.JobSeeker{
		UserID:    u.ID,
		FirstName: f.faker.FirstName(),
		Surname:   f.faker.LastName(),
		Phone:     f.faker.Phone(),
		Location:  f.faker.City(),
		Headline:  f.faker.JobTitle(),
		Summary:   f.faker.Paragraph(1, 3, 12, " "),
		Education: []models.Education{{
			Institution:   f.faker.Company() + " University",
			Qualification: "BSc " + f.faker.JobDescriptor(),
			StartDate:     &start,
			EndDate:       &end,
		}},
		Experience: []models.Experience{{
			Company:   f.faker.Company(),
			Position:  f.faker.JobTitle(),
			StartDate: &end,
			IsCurrent: true,
		}},
	}
	if err := f.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

// Application records an application unless one exists. CV references are
// placeholders; no file is written.
func (f *Factory) Application(ctx context.Context, job *models.Job, u *models.User, p *models.JobSeeker) (bool, error) {
	statuses := models.ApplicationStatuses
	app := &models.Application{
		JobID:       job.ID,
		JobSeekerID: &p.ID,
		UserID:      u.ID,
		FirstName:   p.FirstName,
		Surname:     p.Surname,
		Email:       u.Email,
		Phone:       p.Phone,
		Location:    p.Location,
		CVFile:      "cv/seed-" + f.faker.UUID() + ".pdf",
		CoverLetter: f.faker.Paragraph(1, 2, 10, " "),
		Status:      statuses[f.faker.Number(0, len(statuses)-1)],
		AppliedAt:   time.Now().UTC().Add(-time.Duration(f.faker.Number(1, 500)) * time.Hour),
	}
	var exists int64
	if err := f.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND job_seeker_id = ?", job.ID, p.ID).Count(&exists).Error; err != nil {
		return false, err
	}
	if exists > 0 {
		return false, nil
	}
	return true, f.db.WithContext(ctx).Omit("Job").Create(app).Error
}

// pick returns up to n distinct jobs.
func (f *Factory) pick(jobs []*models.Job, n int) []*models.Job {
	if n >= len(jobs) {
		return jobs
	}
	idx := make([]int, len(jobs))
	for i := range idx {
		idx[i] = i
	}
	f.faker.ShuffleInts(idx)
	out := make([]*models.Job, 0, n)
	for _, i := range idx[:n] {
		out = append(out, jobs[i])
	}
	return out
}
