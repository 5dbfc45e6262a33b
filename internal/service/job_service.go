// Package service holds the job board's business rules. Every mutating
// operation takes the caller's authz.Scope explicitly.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/cache"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
	"jobboard/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxJobTitleLen = 200
	maxJobTextLen  = 20000
)

type JobService struct {
	jobs       repository.JobRepository
	categories repository.CategoryRepository
}

// JobInput is the editable content of a job posting.
type JobInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	Location     string     `json:"location"`
	JobType      string     `json:"job_type"`
	CategoryID   *uint      `json:"category_id"`
	SalaryMin    *int64     `json:"salary_min"`
	SalaryMax    *int64     `json:"salary_max"`
	Deadline     *time.Time `json:"deadline"`
}

func NewJobService(jobs repository.JobRepository, categories repository.CategoryRepository) *JobService {
	return &JobService{jobs: jobs, categories: categories}
}

// PostJob creates a pending, unfeatured job for the employer's company.
func (s *JobService) PostJob(ctx context.Context, scope authz.Scope, in JobInput) (job *models.Job, err error) {
	span, ctx := observability.NewSpan(ctx, "JobService.PostJob")
	defer func() { span.SetError(err); span.End() }()

	if !scope.IsEmployer() {
		return nil, models.NewForbiddenError("Only employers can post jobs")
	}
	companyID, err := scope.RequireEmployerCompany()
	if err != nil {
		return nil, err
	}

	job = &models.Job{
		CompanyID:  companyID,
		Status:     models.JobStatusPending,
		IsFeatured: false,
	}
	if err := s.applyInput(ctx, job, in); err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.Int64("job.id", int64(job.ID)))
	return job, nil
}

// SetJobStatus moves a job to any status of the enum. Employers may only
// change their own company's jobs.
func (s *JobService) SetJobStatus(ctx context.Context, scope authz.Scope, jobID uint, target string) (err error) {
	span, ctx := observability.NewSpan(ctx, "JobService.SetJobStatus", attribute.Int64("job.id", int64(jobID)))
	defer func() { span.SetError(err); span.End() }()

	status, ok := models.ParseJobStatus(target)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("Invalid job status %q", target))
	}

	companyFilter, err := jobManagerFilter(scope)
	if err != nil {
		return err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if companyFilter != nil && job.CompanyID != *companyFilter {
		return models.NewForbiddenError("You can only manage your own company's jobs")
	}

	updated, err := s.jobs.UpdateStatus(ctx, jobID, companyFilter, status)
	if err != nil {
		return err
	}
	if !updated {
		if companyFilter == nil {
			return models.NewNotFoundError("Job", jobID)
		}
		return models.NewForbiddenError("You can only manage your own company's jobs")
	}

	observability.JobStatusChanges.WithLabelValues(string(status)).Inc()
	return nil
}

// UpdateJob edits a job's content. Status and featured flag are untouched.
func (s *JobService) UpdateJob(ctx context.Context, scope authz.Scope, jobID uint, in JobInput) (*models.Job, error) {
	job, err := s.loadManaged(ctx, scope, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, job, in); err != nil {
		return nil, err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// DeleteJob removes a job together with its applications and bookmarks.
func (s *JobService) DeleteJob(ctx context.Context, scope authz.Scope, jobID uint) error {
	job, err := s.loadManaged(ctx, scope, jobID)
	if err != nil {
		return err
	}
	var companyFilter *uint
	if !scope.IsAdmin() {
		companyFilter = &job.CompanyID
	}
	deleted, err := s.jobs.Delete(ctx, jobID, companyFilter)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Job", jobID)
	}
	return nil
}

// SetFeatured toggles the featured flag. Admin only.
func (s *JobService) SetFeatured(ctx context.Context, scope authz.Scope, jobID uint, featured bool) error {
	if !scope.IsAdmin() {
		return models.NewForbiddenError("Only admins can feature jobs")
	}
	return s.jobs.SetFeatured(ctx, jobID, featured)
}

// GetPublicJob returns a job for its detail page. Jobs that are not active
// are only visible to their owner and admins.
func (s *JobService) GetPublicJob(ctx context.Context, scope authz.Scope, jobID uint) (*models.Job, error) {
	var job models.Job
	err := cache.Aside(ctx, cache.JobKey(jobID), &job, cache.JobTTL, func() error {
		loaded, err := s.jobs.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		job = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobStatusActive && !scope.CanManageCompany(job.CompanyID) {
		return nil, models.NewNotFoundError("Job", jobID)
	}
	return &job, nil
}

// ListPublicJobs lists active jobs.
func (s *JobService) ListPublicJobs(ctx context.Context, f listing.JobFilter) (*listing.Result[models.Job], error) {
	return s.jobs.List(ctx, listing.BuildJobQuery(f))
}

// ListManagedJobs lists the jobs the scope may manage, in every status.
func (s *JobService) ListManagedJobs(ctx context.Context, scope authz.Scope, f listing.ManagedJobFilter) (*listing.Result[models.Job], error) {
	q, err := listing.BuildManagedJobQuery(scope, f)
	if err != nil {
		return nil, err
	}
	return s.jobs.List(ctx, q)
}

// ListCompanyJobs lists a company's active jobs for its public profile.
func (s *JobService) ListCompanyJobs(ctx context.Context, companyID uint) ([]models.Job, error) {
	return s.jobs.ListActiveByCompany(ctx, companyID, 50)
}

// ExpireOverdue expires active jobs whose deadline is before now's date.
func (s *JobService) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.jobs.ExpireOverdue(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.JobStatusChanges.WithLabelValues(string(models.JobStatusExpired)).Add(float64(n))
	}
	return n, nil
}

// Stats counts jobs per status. Admin only.
func (s *JobService) Stats(ctx context.Context, scope authz.Scope) (map[models.JobStatus]int64, error) {
	if !scope.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}
	return s.jobs.CountByStatus(ctx)
}

// jobManagerFilter returns the company a manager is restricted to, or nil
// for admins.
func jobManagerFilter(scope authz.Scope) (*uint, error) {
	switch {
	case scope.IsAdmin():
		return nil, nil
	case scope.IsEmployer():
		companyID, err := scope.RequireEmployerCompany()
		if err != nil {
			return nil, err
		}
		return &companyID, nil
	default:
		return nil, models.NewForbiddenError("Only employers and admins can manage jobs")
	}
}

func (s *JobService) loadManaged(ctx context.Context, scope authz.Scope, jobID uint) (*models.Job, error) {
	companyFilter, err := jobManagerFilter(scope)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if companyFilter != nil && job.CompanyID != *companyFilter {
		return nil, models.NewForbiddenError("You can only manage your own company's jobs")
	}
	return job, nil
}

func (s *JobService) applyInput(ctx context.Context, job *models.Job, in JobInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Requirements = strings.TrimSpace(in.Requirements)
	in.Location = strings.TrimSpace(in.Location)

	if err := validation.Required(
		"title", in.Title,
		"description", in.Description,
		"requirements", in.Requirements,
		"location", in.Location,
	); err != nil {
		return models.NewValidationError(err.Error())
	}
	if len(in.Title) > maxJobTitleLen {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxJobTitleLen))
	}
	if len(in.Description) > maxJobTextLen || len(in.Requirements) > maxJobTextLen {
		return models.NewValidationError(fmt.Sprintf("Description and requirements are limited to %d characters", maxJobTextLen))
	}

	jobType, ok := models.ParseJobType(in.JobType)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("Invalid job type %q", in.JobType))
	}

	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.NewValidationError("Unknown category")
			}
			return err
		}
	}

	if (in.SalaryMin != nil && *in.SalaryMin < 0) || (in.SalaryMax != nil && *in.SalaryMax < 0) {
		return models.NewValidationError("Salary cannot be negative")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return models.NewValidationError("salary_min cannot exceed salary_max")
	}

	job.Title = in.Title
	job.Description = in.Description
	job.Requirements = in.Requirements
	job.Location = in.Location
	job.JobType = jobType
	job.CategoryID = in.CategoryID
	job.SalaryMin = in.SalaryMin
	job.SalaryMax = in.SalaryMax
	job.Deadline = in.Deadline
	return nil
}
