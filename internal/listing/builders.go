package listing

import (
	"jobboard/internal/authz"
	"jobboard/internal/models"

	"gorm.io/gorm"
)

// BuildJobQuery builds the public job listing: active jobs only, featured
// first unless another sort key is requested.
func BuildJobQuery(f JobFilter) Query {
	q := newQuery(f.Page, jobOrder(f.Sort)...)
	q.whereExpr("jobs.status = ?", models.JobStatusActive)

	if f.Keyword != "" {
		q.containsAny(f.Keyword, "jobs.title", "jobs.description")
	}
	if f.Location != "" {
		q.containsAny(f.Location, "jobs.location")
	}
	if f.CategoryID != nil {
		q.whereExpr("jobs.category_id = ?", *f.CategoryID)
	}
	if f.JobType != "" {
		q.whereExpr("jobs.job_type = ?", f.JobType)
	}
	return q
}

func jobOrder(sort JobSort) []string {
	switch sort {
	case SortNewest:
		return []string{"jobs.created_at DESC", "jobs.id DESC"}
	case SortSalary:
		return []string{"COALESCE(jobs.salary_max, jobs.salary_min, 0) DESC", "jobs.created_at DESC", "jobs.id DESC"}
	case SortDeadline:
		return []string{"jobs.deadline IS NULL", "jobs.deadline ASC", "jobs.id DESC"}
	default:
		return []string{"jobs.is_featured DESC", "jobs.created_at DESC", "jobs.id DESC"}
	}
}

// BuildManagedJobQuery builds the job management listing. Employers see
// their own company's jobs in every status, admins see all jobs.
func BuildManagedJobQuery(scope authz.Scope, f ManagedJobFilter) (Query, error) {
	q := newQuery(f.Page, "jobs.created_at DESC", "jobs.id DESC")

	switch {
	case scope.IsAdmin():
	case scope.IsEmployer():
		companyID, err := scope.RequireEmployerCompany()
		if err != nil {
			return Query{}, err
		}
		q.whereExpr("jobs.company_id = ?", companyID)
	default:
		return Query{}, models.NewForbiddenError("Only employers and admins can manage jobs")
	}

	if f.Status != "" {
		q.whereExpr("jobs.status = ?", f.Status)
	}
	if f.Query != "" {
		q.containsAny(f.Query, "jobs.title")
	}
	return q, nil
}

// BuildCompanyQuery builds the public company directory with each
// company's active job count.
func BuildCompanyQuery(f CompanyFilter) Query {
	q := newQuery(f.Page, "companies.name ASC", "companies.id ASC")
	q.selectSQL = "companies.*, (SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id AND jobs.status = ?) AS active_jobs"
	q.selectArgs = []any{models.JobStatusActive}

	if f.Search != "" {
		q.containsAny(f.Search, "companies.name", "companies.description")
	}
	if f.Location != "" {
		q.containsAny(f.Location, "companies.location")
	}
	if f.Industry != "" {
		q.whereExpr("companies.industry = ?", f.Industry)
	}
	return q
}

// BuildApplicationQuery builds an application listing limited to what the
// scope may see: admins everything, employers applications to their
// company's jobs, job seekers their own applications.
func BuildApplicationQuery(scope authz.Scope, f ApplicationFilter) (Query, error) {
	q := newQuery(f.Page, "applications.applied_at DESC", "applications.id DESC")
	q.selectSQL = "applications.*"
	q.where(func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN jobs ON jobs.id = applications.job_id")
	})

	switch {
	case scope.IsAdmin():
	case scope.IsEmployer():
		companyID, err := scope.RequireEmployerCompany()
		if err != nil {
			return Query{}, err
		}
		q.whereExpr("jobs.company_id = ?", companyID)
	case scope.IsJobSeeker():
		if id, ok := scope.JobSeekerID(); ok {
			q.whereExpr("applications.job_seeker_id = ?", id)
		} else {
			q.whereExpr("applications.user_id = ?", scope.UserID())
		}
	default:
		return Query{}, models.NewForbiddenError("Sign in to view applications")
	}

	if f.Status != "" {
		q.whereExpr("applications.status = ?", f.Status)
	}
	if f.JobID != nil {
		q.whereExpr("applications.job_id = ?", *f.JobID)
	}
	if f.Query != "" {
		q.containsAny(f.Query, "applications.first_name", "applications.surname", "applications.email", "jobs.title")
	}
	return q, nil
}

// BuildUserQuery builds the admin user listing.
func BuildUserQuery(f UserFilter) Query {
	q := newQuery(f.Page, "users.created_at DESC", "users.id DESC")
	if f.Role != "" {
		q.whereExpr("users.role = ?", f.Role)
	}
	if f.Query != "" {
		q.containsAny(f.Query, "users.username", "users.email")
	}
	return q
}

// SavedJobQuery lists a job seeker's bookmarks, most recent first.
func SavedJobQuery(jobSeekerID uint, page int) Query {
	q := newQuery(page, "saved_jobs.created_at DESC", "saved_jobs.id DESC")
	q.whereExpr("saved_jobs.job_seeker_id = ?", jobSeekerID)
	return q
}

// ContactMessageQuery lists contact messages, unread first.
func ContactMessageQuery(unreadOnly bool, page int) Query {
	q := newQuery(page, "contact_messages.is_read ASC", "contact_messages.created_at DESC", "contact_messages.id DESC")
	if unreadOnly {
		q.whereExpr("contact_messages.is_read = ?", false)
	}
	return q
}
