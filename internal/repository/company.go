package repository

import (
	"context"

	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/observability"

	"gorm.io/gorm"
)

// CompanyRepository defines persistence operations for employer companies.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	UpdateLogo(ctx context.Context, id uint, ref string) error
	List(ctx context.Context, q listing.Query) (*listing.Result[models.Company], error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository returns a new CompanyRepository implementation.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	defer observability.TrackQuery("select", "companies")()

	var company models.Company
	err := r.db.WithContext(ctx).
		Select("companies.*, (SELECT COUNT(*) FROM jobs WHERE jobs.company_id = companies.id AND jobs.status = ?) AS active_jobs", models.JobStatusActive).
		Where("companies.id = ?", id).
		Take(&company).Error
	if err != nil {
		return nil, notFoundOr(err, "Company", id)
	}
	return &company, nil
}

func (r *companyRepository) GetByUserID(ctx context.Context, userID uint) (*models.Company, error) {
	return firstOrNil[models.Company](r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Employer already has a company")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *companyRepository) Update(ctx context.Context, company *models.Company) error {
	err := r.db.WithContext(ctx).Model(company).
		Select("name", "industry", "description", "website", "email", "phone", "address", "location", "updated_at").
		Updates(company).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *companyRepository) UpdateLogo(ctx context.Context, id uint, ref string) error {
	if err := r.db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", id).Update("logo", ref).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *companyRepository) List(ctx context.Context, q listing.Query) (*listing.Result[models.Company], error) {
	defer observability.TrackQuery("list", "companies")()

	res, err := listing.Fetch[models.Company](ctx, r.db, q)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return res, nil
}
