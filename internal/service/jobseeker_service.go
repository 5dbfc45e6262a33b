package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/featureflags"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
	"jobboard/internal/validation"
)

// JobSeekerService manages a job seeker's own resume.
type JobSeekerService struct {
	seekers  repository.JobSeekerRepository
	files    storage.FileStore
	flags    *featureflags.Manager
	maxBytes int64
}

type ProfileInput struct {
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
}

type EducationInput struct {
	Institution   string     `json:"institution"`
	Qualification string     `json:"qualification"`
	FieldOfStudy  string     `json:"field_of_study"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Description   string     `json:"description"`
}

type ExperienceInput struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `json:"is_current"`
	Description string     `json:"description"`
}

func NewJobSeekerService(seekers repository.JobSeekerRepository, files storage.FileStore, flags *featureflags.Manager, maxBytes int64) *JobSeekerService {
	return &JobSeekerService{seekers: seekers, files: files, flags: flags, maxBytes: maxBytes}
}

// GetResume returns the profile with education and experience.
func (s *JobSeekerService) GetResume(ctx context.Context, scope authz.Scope) (*models.JobSeeker, error) {
	if !scope.IsJobSeeker() {
		return nil, models.NewForbiddenError("Job seeker account required")
	}
	profile, err := s.seekers.GetProfile(ctx, scope.UserID())
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewProfileIncompleteError("Create your profile first")
	}
	return profile, nil
}

// SaveProfile creates the profile if missing and updates it otherwise.
func (s *JobSeekerService) SaveProfile(ctx context.Context, scope authz.Scope, in ProfileInput) (*models.JobSeeker, error) {
	if !scope.IsJobSeeker() {
		return nil, models.NewForbiddenError("Job seeker account required")
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Surname = strings.TrimSpace(in.Surname)
	if err := validation.Required("first_name", in.FirstName, "surname", in.Surname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	seeker, err := s.seekers.GetByUserID(ctx, scope.UserID())
	if err != nil {
		return nil, err
	}
	creating := seeker == nil
	if creating {
		seeker = &models.JobSeeker{UserID: scope.UserID()}
	}
	seeker.FirstName = in.FirstName
	seeker.Surname = in.Surname
	seeker.Phone = strings.TrimSpace(in.Phone)
	seeker.Location = strings.TrimSpace(in.Location)
	seeker.Headline = strings.TrimSpace(in.Headline)
	seeker.Summary = strings.TrimSpace(in.Summary)

	if creating {
		err = s.seekers.Create(ctx, seeker)
	} else {
		err = s.seekers.Update(ctx, seeker)
	}
	if err != nil {
		return nil, err
	}
	return seeker, nil
}

// UploadCV replaces the resume file on the profile.
func (s *JobSeekerService) UploadCV(ctx context.Context, scope authz.Scope, filename string, content []byte) (string, error) {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", models.NewValidationError("cv is required")
	}
	if _, err := validation.ValidateExtension(filename, validation.CVExtensions); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("cv exceeds the %d MB limit", s.maxBytes/(1024*1024)))
	}

	ref, err := s.files.Save(ctx, storage.BucketCVs, filename, content)
	if err != nil {
		return "", models.NewStorageError(err)
	}
	if err := s.seekers.SetResume(ctx, seeker.ID, ref); err != nil {
		removeQuietly(ctx, s.files, ref)
		return "", err
	}
	if seeker.Resume != "" {
		removeQuietly(ctx, s.files, seeker.Resume)
	}
	return ref, nil
}

// UploadPicture replaces the profile picture.
func (s *JobSeekerService) UploadPicture(ctx context.Context, scope authz.Scope, filename string, content []byte) (string, error) {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return "", err
	}
	ref, err := storeImage(ctx, s.files, s.flags.Enabled(featureflags.WebPImages, scope.UserID()),
		storage.BucketProfilePictures, filename, content, s.maxBytes)
	if err != nil {
		return "", err
	}
	if err := s.seekers.SetProfilePicture(ctx, seeker.ID, ref); err != nil {
		removeQuietly(ctx, s.files, ref)
		return "", err
	}
	if seeker.ProfilePicture != "" {
		removeQuietly(ctx, s.files, seeker.ProfilePicture)
	}
	return ref, nil
}

func (s *JobSeekerService) AddEducation(ctx context.Context, scope authz.Scope, in EducationInput) (*models.Education, error) {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return nil, err
	}
	e, err := educationFrom(in)
	if err != nil {
		return nil, err
	}
	e.JobSeekerID = seeker.ID
	if err := s.seekers.AddEducation(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *JobSeekerService) UpdateEducation(ctx context.Context, scope authz.Scope, id uint, in EducationInput) (*models.Education, error) {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return nil, err
	}
	e, err := educationFrom(in)
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.JobSeekerID = seeker.ID
	if err := s.seekers.UpdateEducation(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *JobSeekerService) DeleteEducation(ctx context.Context, scope authz.Scope, id uint) error {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return err
	}
	return s.seekers.DeleteEducation(ctx, seeker.ID, id)
}

func (s *JobSeekerService) AddExperience(ctx context.Context, scope authz.Scope, in ExperienceInput) (*models.Experience, error) {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return nil, err
	}
	e, err := experienceFrom(in)
	if err != nil {
		return nil, err
	}
	e.JobSeekerID = seeker.ID
	if err := s.seekers.AddExperience(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *JobSeekerService) UpdateExperience(ctx context.Context, scope authz.Scope, id uint, in ExperienceInput) (*models.Experience, error) {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return nil, err
	}
	e, err := experienceFrom(in)
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.JobSeekerID = seeker.ID
	if err := s.seekers.UpdateExperience(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *JobSeekerService) DeleteExperience(ctx context.Context, scope authz.Scope, id uint) error {
	seeker, err := s.ownProfile(ctx, scope)
	if err != nil {
		return err
	}
	return s.seekers.DeleteExperience(ctx, seeker.ID, id)
}

func (s *JobSeekerService) ownProfile(ctx context.Context, scope authz.Scope) (*models.JobSeeker, error) {
	if !scope.IsJobSeeker() {
		return nil, models.NewForbiddenError("Job seeker account required")
	}
	seeker, err := s.seekers.GetByUserID(ctx, scope.UserID())
	if err != nil {
		return nil, err
	}
	if seeker == nil {
		return nil, models.NewProfileIncompleteError("Create your profile first")
	}
	return seeker, nil
}

func educationFrom(in EducationInput) (*models.Education, error) {
	in.Institution = strings.TrimSpace(in.Institution)
	in.Qualification = strings.TrimSpace(in.Qualification)
	if err := validation.Required("institution", in.Institution, "qualification", in.Qualification); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := checkDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	return &models.Education{
		Institution:   in.Institution,
		Qualification: in.Qualification,
		FieldOfStudy:  strings.TrimSpace(in.FieldOfStudy),
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Description:   strings.TrimSpace(in.Description),
	}, nil
}

func experienceFrom(in ExperienceInput) (*models.Experience, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	if err := validation.Required("company", in.Company, "position", in.Position); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.IsCurrent {
		in.EndDate = nil
	}
	if err := checkDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	return &models.Experience{
		Company:     in.Company,
		Position:    in.Position,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsCurrent:   in.IsCurrent,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return models.NewValidationError("end_date cannot be before start_date")
	}
	return nil
}
