package repository

import (
	"context"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// JobSeekerRepository defines persistence operations for job seeker
// profiles and their education and experience entries.
type JobSeekerRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.JobSeeker, error)
	GetProfile(ctx context.Context, userID uint) (*models.JobSeeker, error)
	Create(ctx context.Context, seeker *models.JobSeeker) error
	Update(ctx context.Context, seeker *models.JobSeeker) error
	SetResume(ctx context.Context, id uint, ref string) error
	SetProfilePicture(ctx context.Context, id uint, ref string) error

	AddEducation(ctx context.Context, e *models.Education) error
	UpdateEducation(ctx context.Context, e *models.Education) error
	DeleteEducation(ctx context.Context, jobSeekerID, id uint) error
	AddExperience(ctx context.Context, e *models.Experience) error
	UpdateExperience(ctx context.Context, e *models.Experience) error
	DeleteExperience(ctx context.Context, jobSeekerID, id uint) error
}

type jobSeekerRepository struct {
	db *gorm.DB
}

// NewJobSeekerRepository returns a new JobSeekerRepository implementation.
func NewJobSeekerRepository(db *gorm.DB) JobSeekerRepository {
	return &jobSeekerRepository{db: db}
}

func (r *jobSeekerRepository) GetByUserID(ctx context.Context, userID uint) (*models.JobSeeker, error) {
	return firstOrNil[models.JobSeeker](r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// GetProfile loads the profile with education and experience, newest first.
func (r *jobSeekerRepository) GetProfile(ctx context.Context, userID uint) (*models.JobSeeker, error) {
	return firstOrNil[models.JobSeeker](r.db.WithContext(ctx).
		Preload("Education", func(db *gorm.DB) *gorm.DB { return db.Order("start_date DESC, id DESC") }).
		Preload("Experience", func(db *gorm.DB) *gorm.DB { return db.Order("start_date DESC, id DESC") }).
		Where("user_id = ?", userID))
}

func (r *jobSeekerRepository) Create(ctx context.Context, seeker *models.JobSeeker) error {
	if err := r.db.WithContext(ctx).Omit("Education", "Experience").Create(seeker).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Profile already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobSeekerRepository) Update(ctx context.Context, seeker *models.JobSeeker) error {
	err := r.db.WithContext(ctx).Model(seeker).
		Select("first_name", "surname", "phone", "location", "headline", "summary", "updated_at").
		Updates(seeker).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobSeekerRepository) SetResume(ctx context.Context, id uint, ref string) error {
	return r.setColumn(ctx, id, "resume", ref)
}

func (r *jobSeekerRepository) SetProfilePicture(ctx context.Context, id uint, ref string) error {
	return r.setColumn(ctx, id, "profile_picture", ref)
}

func (r *jobSeekerRepository) setColumn(ctx context.Context, id uint, column, value string) error {
	if err := r.db.WithContext(ctx).Model(&models.JobSeeker{}).Where("id = ?", id).Update(column, value).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobSeekerRepository) AddEducation(ctx context.Context, e *models.Education) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateEducation only touches rows owned by e.JobSeekerID.
func (r *jobSeekerRepository) UpdateEducation(ctx context.Context, e *models.Education) error {
	res := r.db.WithContext(ctx).Model(&models.Education{}).
		Where("id = ? AND job_seeker_id = ?", e.ID, e.JobSeekerID).
		Select("institution", "qualification", "field_of_study", "start_date", "end_date", "description", "updated_at").
		Updates(e)
	return ownedRowResult(res, "Education", e.ID)
}

func (r *jobSeekerRepository) DeleteEducation(ctx context.Context, jobSeekerID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND job_seeker_id = ?", id, jobSeekerID).Delete(&models.Education{})
	return ownedRowResult(res, "Education", id)
}

func (r *jobSeekerRepository) AddExperience(ctx context.Context, e *models.Experience) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateExperience only touches rows owned by e.JobSeekerID.
func (r *jobSeekerRepository) UpdateExperience(ctx context.Context, e *models.Experience) error {
	res := r.db.WithContext(ctx).Model(&models.Experience{}).
		Where("id = ? AND job_seeker_id = ?", e.ID, e.JobSeekerID).
		Select("company", "position", "start_date", "end_date", "is_current", "description", "updated_at").
		Updates(e)
	return ownedRowResult(res, "Experience", e.ID)
}

func (r *jobSeekerRepository) DeleteExperience(ctx context.Context, jobSeekerID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND job_seeker_id = ?", id, jobSeekerID).Delete(&models.Experience{})
	return ownedRowResult(res, "Experience", id)
}

// ownedRowResult treats an update or delete that matched nothing as NotFound,
// so other seekers' rows are indistinguishable from missing ones.
func ownedRowResult(res *gorm.DB, resource string, id uint) error {
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}
