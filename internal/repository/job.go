package repository

import (
	"context"
	"time"

	"jobboard/internal/cache"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/observability"

	"gorm.io/gorm"
)

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uint) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	// UpdateStatus changes the status of job id. A non-nil companyID
	// restricts the update to that company's jobs; false means no row matched.
	UpdateStatus(ctx context.Context, id uint, companyID *uint, status models.JobStatus) (bool, error)
	SetFeatured(ctx context.Context, id uint, featured bool) error
	Delete(ctx context.Context, id uint, companyID *uint) (bool, error)
	List(ctx context.Context, q listing.Query) (*listing.Result[models.Job], error)
	ListActiveByCompany(ctx context.Context, companyID uint, limit int) ([]models.Job, error)
	ExpireOverdue(ctx context.Context, today time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository returns a new JobRepository implementation.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	defer observability.TrackQuery("insert", "jobs")()

	if err := r.db.WithContext(ctx).Omit("Company", "Category").Create(job).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	defer observability.TrackQuery("select", "jobs")()

	var job models.Job
	if err := r.db.WithContext(ctx).Preload("Company").Preload("Category").First(&job, id).Error; err != nil {
		return nil, notFoundOr(err, "Job", id)
	}
	return &job, nil
}

func (r *jobRepository) Update(ctx context.Context, job *models.Job) error {
	err := r.db.WithContext(ctx).Model(job).
		Select("title", "description", "requirements", "location", "job_type", "category_id",
			"salary_min", "salary_max", "deadline", "updated_at").
		Updates(job).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateJob(ctx, job.ID)
	return nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id uint, companyID *uint, status models.JobStatus) (bool, error) {
	defer observability.TrackQuery("update", "jobs")()

	tx := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id)
	if companyID != nil {
		tx = tx.Where("company_id = ?", *companyID)
	}
	res := tx.Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	cache.InvalidateJob(ctx, id)
	return res.RowsAffected > 0, nil
}

func (r *jobRepository) SetFeatured(ctx context.Context, id uint, featured bool) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Update("is_featured", featured)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Job", id)
	}
	cache.InvalidateJob(ctx, id)
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id uint, companyID *uint) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id)
	if companyID != nil {
		tx = tx.Where("company_id = ?", *companyID)
	}
	res := tx.Delete(&models.Job{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	cache.InvalidateJob(ctx, id)
	return res.RowsAffected > 0, nil
}

func (r *jobRepository) List(ctx context.Context, q listing.Query) (*listing.Result[models.Job], error) {
	defer observability.TrackQuery("list", "jobs")()

	res, err := listing.Fetch[models.Job](ctx, r.db, q, "Company", "Category")
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return res, nil
}

func (r *jobRepository) ListActiveByCompany(ctx context.Context, companyID uint, limit int) ([]models.Job, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	jobs := []models.Job{}
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("company_id = ? AND status = ?", companyID, models.JobStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return jobs, nil
}

// ExpireOverdue moves active jobs whose deadline is before today to expired.
func (r *jobRepository) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	defer observability.TrackQuery("update", "jobs")()

	cutoff := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var ids []uint
	var expired int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Job{}).
			Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.JobStatusActive, cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Model(&models.Job{}).
			Where("id IN ? AND status = ?", ids, models.JobStatusActive).
			Updates(map[string]any{"status": models.JobStatusExpired, "updated_at": time.Now()})
		expired = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	for _, id := range ids {
		cache.InvalidateJob(ctx, id)
	}
	return expired, nil
}

func (r *jobRepository) CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error) {
	var rows []struct {
		Status models.JobStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[models.JobStatus]int64, len(models.JobStatuses))
	for _, s := range models.JobStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
