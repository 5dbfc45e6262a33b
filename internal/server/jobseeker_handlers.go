package server

import (
	"strconv"

	"jobboard/internal/listing"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MyApplications handles GET /api/jobseeker/applications
func (s *Server) MyApplications(c *fiber.Ctx) error {
	result, err := s.applicationService.ListForScope(c.UserContext(), scopeFrom(c), listing.ParseApplicationFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// GetResume handles GET /api/jobseeker/my-resume
func (s *Server) GetResume(c *fiber.Ctx) error {
	resume, err := s.jobSeekerService.GetResume(c.UserContext(), scopeFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resume)
}

// SaveProfile handles PUT /api/jobseeker/my-resume
func (s *Server) SaveProfile(c *fiber.Ctx) error {
	var req service.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.jobSeekerService.SaveProfile(c.UserContext(), scopeFrom(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// UploadCV handles POST /api/jobseeker/my-resume/cv
func (s *Server) UploadCV(c *fiber.Ctx) error {
	filename, content, err := requireUpload(c, "cv", s.config.UploadMaxBytes())
	if err != nil {
		return s.respondError(c, err)
	}
	ref, err := s.jobSeekerService.UploadCV(c.UserContext(), scopeFrom(c), filename, content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"resume": ref})
}

// UploadPicture handles POST /api/jobseeker/my-resume/picture
func (s *Server) UploadPicture(c *fiber.Ctx) error {
	filename, content, err := requireUpload(c, "picture", s.config.UploadMaxBytes())
	if err != nil {
		return s.respondError(c, err)
	}
	ref, err := s.jobSeekerService.UploadPicture(c.UserContext(), scopeFrom(c), filename, content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"profile_picture": ref})
}

// AddEducation handles POST /api/jobseeker/my-resume/education
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req service.EducationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	e, err := s.jobSeekerService.AddEducation(c.UserContext(), scopeFrom(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// UpdateEducation handles PUT /api/jobseeker/my-resume/education/:id
func (s *Server) UpdateEducation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.EducationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	e, err := s.jobSeekerService.UpdateEducation(c.UserContext(), scopeFrom(c), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(e)
}

// DeleteEducation handles DELETE /api/jobseeker/my-resume/education/:id
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.jobSeekerService.DeleteEducation(c.UserContext(), scopeFrom(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddExperience handles POST /api/jobseeker/my-resume/experience
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req service.ExperienceInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	e, err := s.jobSeekerService.AddExperience(c.UserContext(), scopeFrom(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// UpdateExperience handles PUT /api/jobseeker/my-resume/experience/:id
func (s *Server) UpdateExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ExperienceInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	e, err := s.jobSeekerService.UpdateExperience(c.UserContext(), scopeFrom(c), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(e)
}

// DeleteExperience handles DELETE /api/jobseeker/my-resume/experience/:id
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.jobSeekerService.DeleteExperience(c.UserContext(), scopeFrom(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SavedJobs handles GET /api/jobseeker/saved-jobs. The legacy unsave=<job id>
// parameter removes a bookmark before listing.
func (s *Server) SavedJobs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	scope := scopeFrom(c)

	if raw := c.Query("unsave"); raw != "" {
		jobID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || jobID == 0 {
			return s.respondError(c, errInvalidJobID)
		}
		if err := s.savedJobService.Remove(ctx, scope, uint(jobID)); err != nil {
			return s.respondError(c, err)
		}
	}

	result, err := s.savedJobService.List(ctx, scope, listing.ParsePage(c.Query("page")))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// SaveJob handles POST /api/jobseeker/saved-jobs/:jobId
func (s *Server) SaveJob(c *fiber.Ctx) error {
	jobID, err := s.parseID(c, "jobId")
	if err != nil {
		return nil
	}
	if err := s.savedJobService.Save(c.UserContext(), scopeFrom(c), jobID); err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"job_id": jobID, "saved": true})
}

// UnsaveJob handles DELETE /api/jobseeker/saved-jobs/:jobId
func (s *Server) UnsaveJob(c *fiber.Ctx) error {
	jobID, err := s.parseID(c, "jobId")
	if err != nil {
		return nil
	}
	if err := s.savedJobService.Remove(c.UserContext(), scopeFrom(c), jobID); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
