package repository

import (
	"context"
	"time"

	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationRepository defines persistence operations for job applications.
type ApplicationRepository interface {
	// CreateIfAbsent inserts app unless the (job, job seeker) pair already
	// has an application. It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, app *models.Application) (bool, error)
	Exists(ctx context.Context, jobID, jobSeekerID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error
	List(ctx context.Context, q listing.Query) (*listing.Result[models.Application], error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository returns a new ApplicationRepository implementation.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) CreateIfAbsent(ctx context.Context, app *models.Application) (bool, error) {
	defer observability.TrackQuery("insert", "applications")()

	res := r.db.WithContext(ctx).
		Omit("Job").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "job_seeker_id"}},
			DoNothing: true,
		}).
		Create(app)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *applicationRepository) Exists(ctx context.Context, jobID, jobSeekerID uint) (bool, error) {
	defer observability.TrackQuery("exists", "applications")()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND job_seeker_id = ?", jobID, jobSeekerID).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Preload("Job").Preload("Job.Company").First(&app, id).Error; err != nil {
		return nil, notFoundOr(err, "Application", id)
	}
	return &app, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error {
	defer observability.TrackQuery("update", "applications")()

	res := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Application", id)
	}
	return nil
}

func (r *applicationRepository) List(ctx context.Context, q listing.Query) (*listing.Result[models.Application], error) {
	defer observability.TrackQuery("list", "applications")()

	res, err := listing.Fetch[models.Application](ctx, r.db, q, "Job", "Job.Company")
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return res, nil
}
