package repository

import (
	"context"

	"jobboard/internal/listing"
	"jobboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedJobRepository defines persistence operations for bookmarked jobs.
type SavedJobRepository interface {
	Save(ctx context.Context, jobSeekerID, jobID uint) error
	Remove(ctx context.Context, jobSeekerID, jobID uint) (bool, error)
	List(ctx context.Context, jobSeekerID uint, page int) (*listing.Result[models.SavedJob], error)
	IsSaved(ctx context.Context, jobSeekerID, jobID uint) (bool, error)
}

type savedJobRepository struct {
	db *gorm.DB
}

// NewSavedJobRepository returns a new SavedJobRepository implementation.
func NewSavedJobRepository(db *gorm.DB) SavedJobRepository {
	return &savedJobRepository{db: db}
}

// Save is idempotent: saving an already saved job is a no-op.
func (r *savedJobRepository) Save(ctx context.Context, jobSeekerID, jobID uint) error {
	row := models.SavedJob{JobSeekerID: jobSeekerID, JobID: jobID}
	err := r.db.WithContext(ctx).
		Omit("Job").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_seeker_id"}, {Name: "job_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *savedJobRepository) Remove(ctx context.Context, jobSeekerID, jobID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("job_seeker_id = ? AND job_id = ?", jobSeekerID, jobID).
		Delete(&models.SavedJob{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *savedJobRepository) List(ctx context.Context, jobSeekerID uint, page int) (*listing.Result[models.SavedJob], error) {
	q := listing.SavedJobQuery(jobSeekerID, page)
	res, err := listing.Fetch[models.SavedJob](ctx, r.db, q, "Job", "Job.Company")
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return res, nil
}

func (r *savedJobRepository) IsSaved(ctx context.Context, jobSeekerID, jobID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SavedJob{}).
		Where("job_seeker_id = ? AND job_id = ?", jobSeekerID, jobID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
