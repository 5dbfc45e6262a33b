package server

import (
	"jobboard/internal/listing"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListJobs handles GET /api/jobs
func (s *Server) ListJobs(c *fiber.Ctx) error {
	result, err := s.jobService.ListPublicJobs(c.UserContext(), listing.ParseJobFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// GetJob handles GET /api/jobs/:id
func (s *Server) GetJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.jobDetails(c, id)
}

// LegacyJobDetails handles GET /api/job-details?id=
func (s *Server) LegacyJobDetails(c *fiber.Ctx) error {
	id, err := s.queryID(c, "id")
	if err != nil {
		return nil
	}
	return s.jobDetails(c, id)
}

func (s *Server) jobDetails(c *fiber.Ctx, id uint) error {
	ctx := c.UserContext()
	scope := scopeFrom(c)

	job, err := s.jobService.GetPublicJob(ctx, scope, id)
	if err != nil {
		return s.respondError(c, err)
	}
	state, err := s.applicationService.ApplyState(ctx, scope, id)
	if err != nil {
		return s.respondError(c, err)
	}

	saved := false
	if scope.IsJobSeeker() {
		// The page renders without the saved marker when the lookup fails.
		saved, err = s.savedJobService.IsSaved(ctx, scope, id)
		if err != nil && !models.IsCode(err, models.CodeForbidden) {
			saved = false
			middleware.Logger.WarnContext(ctx, "saved state unavailable",
				"path", c.Path(), "job_id", id, "code", models.ErrorCode(err), "error", err)
		}
	}

	return c.JSON(fiber.Map{
		"job":   job,
		"apply": state,
		"saved": saved,
	})
}

// ApplyForJob handles POST /api/jobs/:id/apply (multipart, "cv" file)
func (s *Server) ApplyForJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.apply(c, id)
}

// LegacyApply handles POST /api/job-details?id= with an apply_job form field.
func (s *Server) LegacyApply(c *fiber.Ctx) error {
	id, err := s.queryID(c, "id")
	if err != nil {
		return nil
	}
	if c.FormValue("apply_job") == "" {
		return s.jobDetails(c, id)
	}
	return s.apply(c, id)
}

func (s *Server) apply(c *fiber.Ctx, jobID uint) error {
	filename, content, err := readUpload(c, "cv", s.config.UploadMaxBytes())
	if err != nil {
		return s.respondError(c, err)
	}

	in := service.SubmitApplicationInput{
		FirstName:   c.FormValue("first_name"),
		Surname:     c.FormValue("surname"),
		Email:       c.FormValue("email"),
		Phone:       c.FormValue("phone"),
		Location:    c.FormValue("location"),
		CoverLetter: c.FormValue("cover_letter"),
		CVFilename:  filename,
		CV:          content,
	}

	app, err := s.applicationService.SubmitApplication(c.UserContext(), scopeFrom(c), jobID, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}
