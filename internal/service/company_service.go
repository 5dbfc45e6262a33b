package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/featureflags"
	"jobboard/internal/listing"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
	"jobboard/internal/validation"
)

type CompanyService struct {
	companies repository.CompanyRepository
	jobs      repository.JobRepository
	files     storage.FileStore
	flags     *featureflags.Manager
	maxBytes  int64
}

// CompanyInput is the editable company profile.
type CompanyInput struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Location    string `json:"location"`
}

// CompanyDetail is a public company page.
type CompanyDetail struct {
	Company *models.Company `json:"company"`
	Jobs    []models.Job    `json:"jobs"`
}

func NewCompanyService(
	companies repository.CompanyRepository,
	jobs repository.JobRepository,
	files storage.FileStore,
	flags *featureflags.Manager,
	maxBytes int64,
) *CompanyService {
	return &CompanyService{companies: companies, jobs: jobs, files: files, flags: flags, maxBytes: maxBytes}
}

// GetOwn returns the employer's company, or nil before onboarding.
func (s *CompanyService) GetOwn(ctx context.Context, scope authz.Scope) (*models.Company, error) {
	if !scope.IsEmployer() {
		return nil, models.NewForbiddenError("Employer account required")
	}
	return s.companies.GetByUserID(ctx, scope.UserID())
}

// SaveOwn creates the employer's company on first call and updates it after.
func (s *CompanyService) SaveOwn(ctx context.Context, scope authz.Scope, in CompanyInput) (*models.Company, error) {
	if !scope.IsEmployer() {
		return nil, models.NewForbiddenError("Employer account required")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Required("name", in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	company, err := s.companies.GetByUserID(ctx, scope.UserID())
	if err != nil {
		return nil, err
	}
	creating := company == nil
	if creating {
		company = &models.Company{UserID: scope.UserID()}
	}

	company.Name = in.Name
	company.Industry = strings.TrimSpace(in.Industry)
	company.Description = strings.TrimSpace(in.Description)
	company.Website = strings.TrimSpace(in.Website)
	company.Email = in.Email
	company.Phone = strings.TrimSpace(in.Phone)
	company.Address = strings.TrimSpace(in.Address)
	company.Location = strings.TrimSpace(in.Location)

	if creating {
		err = s.companies.Create(ctx, company)
	} else {
		err = s.companies.Update(ctx, company)
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

// UploadLogo stores a new logo for the employer's company and removes the old one.
func (s *CompanyService) UploadLogo(ctx context.Context, scope authz.Scope, filename string, content []byte) (string, error) {
	if _, err := scope.RequireEmployerCompany(); err != nil {
		return "", err
	}
	company, err := s.companies.GetByUserID(ctx, scope.UserID())
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", models.NewProfileIncompleteError("Create your company profile first")
	}

	ref, err := storeImage(ctx, s.files, s.flags.Enabled(featureflags.WebPImages, scope.UserID()),
		storage.BucketCompanyLogos, filename, content, s.maxBytes)
	if err != nil {
		return "", err
	}
	if err := s.companies.UpdateLogo(ctx, company.ID, ref); err != nil {
		removeQuietly(ctx, s.files, ref)
		return "", err
	}
	if company.Logo != "" {
		removeQuietly(ctx, s.files, company.Logo)
	}
	return ref, nil
}

func (s *CompanyService) List(ctx context.Context, f listing.CompanyFilter) (*listing.Result[models.Company], error) {
	return s.companies.List(ctx, listing.BuildCompanyQuery(f))
}

// Get returns a company with its active jobs.
func (s *CompanyService) Get(ctx context.Context, id uint) (*CompanyDetail, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListActiveByCompany(ctx, id, 50)
	if err != nil {
		return nil, err
	}
	return &CompanyDetail{Company: company, Jobs: jobs}, nil
}

// storeImage validates an image upload and saves it to bucket, converting
// it to WebP when toWebP is set.
func storeImage(ctx context.Context, files storage.FileStore, toWebP bool, bucket, filename string, content []byte, maxBytes int64) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("file is required")
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("file exceeds the %d MB limit", maxBytes/(1024*1024)))
	}
	if _, err := validation.ValidateExtension(filename, validation.ImageExtensions); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if !storage.IsImage(content) {
		return "", models.NewValidationError(storage.ErrNotImage.Error())
	}

	if toWebP {
		converted, err := storage.NormalizeImage(content)
		if err != nil {
			if errors.Is(err, storage.ErrNotImage) {
				return "", models.NewValidationError(err.Error())
			}
			return "", models.NewStorageError(err)
		}
		content = converted
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".webp"
	}

	ref, err := files.Save(ctx, bucket, filename, content)
	if err != nil {
		return "", models.NewStorageError(err)
	}
	return ref, nil
}

func removeQuietly(ctx context.Context, files storage.FileStore, ref string) {
	if err := files.Remove(ref); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove stored file", "ref", ref, "error", err)
	}
}
