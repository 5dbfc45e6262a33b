package service

import (
	"context"

	"jobboard/internal/authz"
	"jobboard/internal/featureflags"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/repository"
)

type SavedJobService struct {
	saved repository.SavedJobRepository
	jobs  repository.JobRepository
	flags *featureflags.Manager
}

func NewSavedJobService(saved repository.SavedJobRepository, jobs repository.JobRepository, flags *featureflags.Manager) *SavedJobService {
	return &SavedJobService{saved: saved, jobs: jobs, flags: flags}
}

// Save bookmarks an active job. Saving twice is a no-op.
func (s *SavedJobService) Save(ctx context.Context, scope authz.Scope, jobID uint) error {
	seekerID, err := s.seeker(scope)
	if err != nil {
		return err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusActive {
		return models.NewNotFoundError("Job", jobID)
	}
	return s.saved.Save(ctx, seekerID, jobID)
}

// Remove deletes a bookmark. Removing a missing bookmark is NotFound.
func (s *SavedJobService) Remove(ctx context.Context, scope authz.Scope, jobID uint) error {
	seekerID, err := s.seeker(scope)
	if err != nil {
		return err
	}
	removed, err := s.saved.Remove(ctx, seekerID, jobID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("Saved job", jobID)
	}
	return nil
}

func (s *SavedJobService) List(ctx context.Context, scope authz.Scope, page int) (*listing.Result[models.SavedJob], error) {
	seekerID, err := s.seeker(scope)
	if err != nil {
		return nil, err
	}
	return s.saved.List(ctx, seekerID, page)
}

// IsSaved is false for anyone without a job seeker profile.
func (s *SavedJobService) IsSaved(ctx context.Context, scope authz.Scope, jobID uint) (bool, error) {
	seekerID, ok := scope.JobSeekerID()
	if !ok || !s.flags.Enabled(featureflags.SavedJobs, scope.UserID()) {
		return false, nil
	}
	return s.saved.IsSaved(ctx, seekerID, jobID)
}

func (s *SavedJobService) seeker(scope authz.Scope) (uint, error) {
	if !scope.IsJobSeeker() {
		return 0, models.NewForbiddenError("Job seeker account required")
	}
	if !s.flags.Enabled(featureflags.SavedJobs, scope.UserID()) {
		return 0, models.NewForbiddenError("Saved jobs are not available")
	}
	id, ok := scope.JobSeekerID()
	if !ok {
		return 0, models.NewProfileIncompleteError("Create your profile first")
	}
	return id, nil
}
