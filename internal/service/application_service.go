package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/listing"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
	"jobboard/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// NotificationSender delivers best-effort notifications.
type NotificationSender interface {
	Dispatch(ctx context.Context, msg notifications.Message)
}

type ApplicationService struct {
	apps       repository.ApplicationRepository
	jobs       repository.JobRepository
	files      storage.FileStore
	notifier   NotificationSender
	maxCVBytes int64
	now        func() time.Time
}

// SubmitApplicationInput is the applicant snapshot plus the uploaded CV.
type SubmitApplicationInput struct {
	FirstName   string
	Surname     string
	Email       string
	Phone       string
	Location    string
	CoverLetter string
	CVFilename  string
	CV          []byte
}

// ApplyState tells the job details page whether the viewer can apply.
type ApplyState struct {
	CanApply   bool   `json:"can_apply"`
	HasApplied bool   `json:"has_applied"`
	Reason     string `json:"reason,omitempty"`
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	files storage.FileStore,
	notifier NotificationSender,
	maxCVBytes int64,
) *ApplicationService {
	return &ApplicationService{
		apps:       apps,
		jobs:       jobs,
		files:      files,
		notifier:   notifier,
		maxCVBytes: maxCVBytes,
		now:        time.Now,
	}
}

// SubmitApplication records a job seeker's application for an active job.
// Validation happens before the CV is stored; a stored CV is removed again
// when the row cannot be written.
func (s *ApplicationService) SubmitApplication(ctx context.Context, scope authz.Scope, jobID uint, in SubmitApplicationInput) (app *models.Application, err error) {
	span, ctx := observability.NewSpan(ctx, "ApplicationService.SubmitApplication", attribute.Int64("job.id", int64(jobID)))
	defer func() {
		span.SetError(err)
		span.End()
		observability.ApplicationsSubmitted.WithLabelValues(submitResult(err)).Inc()
	}()

	switch {
	case scope.IsAnonymous():
		return nil, models.NewUnauthorizedError("Log in to apply for jobs")
	case !scope.IsJobSeeker():
		return nil, models.NewForbiddenError("Only job seekers can apply for jobs")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusActive {
		return nil, models.NewValidationError("This job is not accepting applications")
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Required("first_name", in.FirstName, "surname", in.Surname, "email", in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if len(in.CV) == 0 || strings.TrimSpace(in.CVFilename) == "" {
		return nil, models.NewValidationError("cv is required")
	}
	if _, err := validation.ValidateExtension(in.CVFilename, validation.CVExtensions); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if s.maxCVBytes > 0 && int64(len(in.CV)) > s.maxCVBytes {
		return nil, models.NewValidationError(fmt.Sprintf("cv exceeds the %d MB limit", s.maxCVBytes/(1024*1024)))
	}

	seekerID := scope.JobSeekerIDPtr()
	if seekerID != nil {
		applied, err := s.apps.Exists(ctx, jobID, *seekerID)
		if err != nil {
			return nil, err
		}
		if applied {
			return nil, models.NewAlreadyAppliedError(jobID)
		}
	}

	ref, err := s.files.Save(ctx, storage.BucketCVs, in.CVFilename, in.CV)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	app = &models.Application{
		JobID:       jobID,
		JobSeekerID: seekerID,
		UserID:      scope.UserID(),
		FirstName:   in.FirstName,
		Surname:     in.Surname,
		Email:       in.Email,
		Phone:       strings.TrimSpace(in.Phone),
		Location:    strings.TrimSpace(in.Location),
		CVFile:      ref,
		CoverLetter: in.CoverLetter,
		Status:      models.ApplicationStatusPending,
		AppliedAt:   s.now().UTC(),
	}

	created, err := s.apps.CreateIfAbsent(ctx, app)
	if err != nil {
		s.discard(ctx, ref)
		return nil, models.NewInternalError(err)
	}
	if !created {
		s.discard(ctx, ref)
		return nil, models.NewAlreadyAppliedError(jobID)
	}

	span.AddAttributes(attribute.Int64("application.id", int64(app.ID)))
	return app, nil
}

// SetApplicationStatus moves an application to any status of the enum and
// notifies the applicant once the update is stored.
func (s *ApplicationService) SetApplicationStatus(ctx context.Context, scope authz.Scope, applicationID uint, target string) (err error) {
	span, ctx := observability.NewSpan(ctx, "ApplicationService.SetApplicationStatus", attribute.Int64("application.id", int64(applicationID)))
	defer func() { span.SetError(err); span.End() }()

	status, ok := models.ParseApplicationStatus(target)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("Invalid application status %q", target))
	}
	if !scope.IsAdmin() && !scope.IsEmployer() {
		return models.NewForbiddenError("Only employers and admins can review applications")
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Job == nil {
		return models.NewNotFoundError("Job", app.JobID)
	}
	if err := scope.AuthorizeCompany(app.Job.CompanyID); err != nil {
		return err
	}

	if err := s.apps.UpdateStatus(ctx, applicationID, status); err != nil {
		return err
	}
	observability.ApplicationStatusChanges.WithLabelValues(string(status)).Inc()

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, statusMessage(app, status))
	}
	return nil
}

// HasApplied reports whether the job seeker already applied for jobID. It is
// advisory; the unique index is what prevents duplicates.
func (s *ApplicationService) HasApplied(ctx context.Context, jobID uint, jobSeekerID *uint) (bool, error) {
	if jobSeekerID == nil {
		return false, nil
	}
	return s.apps.Exists(ctx, jobID, *jobSeekerID)
}

// ListForScope lists the applications visible to scope.
func (s *ApplicationService) ListForScope(ctx context.Context, scope authz.Scope, f listing.ApplicationFilter) (*listing.Result[models.Application], error) {
	q, err := listing.BuildApplicationQuery(scope, f)
	if err != nil {
		return nil, err
	}
	return s.apps.List(ctx, q)
}

// GetForScope returns one application to its applicant, the owning employer
// or an admin.
func (s *ApplicationService) GetForScope(ctx context.Context, scope authz.Scope, id uint) (*models.Application, error) {
	if scope.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case scope.IsAdmin():
		return app, nil
	case scope.IsJobSeeker():
		if app.UserID == scope.UserID() {
			return app, nil
		}
	case scope.IsEmployer():
		if app.Job != nil && scope.OwnsCompany(app.Job.CompanyID) {
			return app, nil
		}
	}
	return nil, models.NewNotFoundError("Application", id)
}

// ApplyState reports whether scope may apply for jobID.
func (s *ApplicationService) ApplyState(ctx context.Context, scope authz.Scope, jobID uint) (ApplyState, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return ApplyState{}, err
	}
	switch {
	case scope.IsAnonymous():
		return ApplyState{Reason: "login_required"}, nil
	case !scope.IsJobSeeker():
		return ApplyState{Reason: "jobseekers_only"}, nil
	case job.Status != models.JobStatusActive:
		return ApplyState{Reason: "not_accepting"}, nil
	}

	applied, err := s.HasApplied(ctx, jobID, scope.JobSeekerIDPtr())
	if err != nil {
		return ApplyState{}, err
	}
	if applied {
		return ApplyState{HasApplied: true, Reason: "already_applied"}, nil
	}
	return ApplyState{CanApply: true}, nil
}

func (s *ApplicationService) discard(ctx context.Context, ref string) {
	if err := s.files.Remove(ref); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove orphaned cv", "ref", ref, "error", err)
	}
}

func statusMessage(app *models.Application, status models.ApplicationStatus) notifications.Message {
	title := fmt.Sprintf("job #%d", app.JobID)
	if app.Job != nil {
		title = app.Job.Title
	}
	return notifications.Message{
		Recipient: app.Email,
		Subject:   fmt.Sprintf("Your application for %s was updated", title),
		Body: fmt.Sprintf("Hello %s,\n\nThe status of your application for %s is now %q.\n",
			app.FirstName, title, string(status)),
		UserID: app.UserID,
		Kind:   "application_status",
	}
}

func submitResult(err error) string {
	if err == nil {
		return "created"
	}
	switch models.ErrorCode(err) {
	case models.CodeAlreadyApplied:
		return "duplicate"
	case models.CodeValidation:
		return "invalid"
	case models.CodeUnauthorized, models.CodeForbidden:
		return "denied"
	}
	return "error"
}
