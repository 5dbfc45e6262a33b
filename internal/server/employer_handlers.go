package server

import (
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// GetOwnCompany handles GET /api/employer/company. Before onboarding the
// company is null.
func (s *Server) GetOwnCompany(c *fiber.Ctx) error {
	company, err := s.companyService.GetOwn(c.UserContext(), scopeFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"company": company})
}

// SaveOwnCompany handles PUT /api/employer/company
func (s *Server) SaveOwnCompany(c *fiber.Ctx) error {
	var req service.CompanyInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	company, err := s.companyService.SaveOwn(c.UserContext(), scopeFrom(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(company)
}

// UploadCompanyLogo handles POST /api/employer/company/logo (multipart, "logo" file)
func (s *Server) UploadCompanyLogo(c *fiber.Ctx) error {
	filename, content, err := requireUpload(c, "logo", s.config.UploadMaxBytes())
	if err != nil {
		return s.respondError(c, err)
	}
	ref, err := s.companyService.UploadLogo(c.UserContext(), scopeFrom(c), filename, content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"logo": ref})
}

// PostJob handles POST /api/employer/post-job
func (s *Server) PostJob(c *fiber.Ctx) error {
	var req service.JobInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	job, err := s.jobService.PostJob(c.UserContext(), scopeFrom(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

// ManageJobs handles GET /api/employer/manage-jobs. The legacy
// action=set_status&job_id=&to= form changes a status before listing.
func (s *Server) ManageJobs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	scope := scopeFrom(c)

	if c.Query("action") == "set_status" {
		jobID, err := s.queryID(c, "job_id")
		if err != nil {
			return nil
		}
		if err := s.jobService.SetJobStatus(ctx, scope, jobID, c.Query("to")); err != nil {
			return s.respondError(c, err)
		}
	}

	result, err := s.jobService.ListManagedJobs(ctx, scope, listing.ParseManagedJobFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// SetJobStatus handles PATCH /api/employer/jobs/:id/status and its admin twin.
func (s *Server) SetJobStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.jobService.SetJobStatus(c.UserContext(), scopeFrom(c), id, req.Status); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "status": req.Status})
}

// UpdateJob handles PUT /api/employer/jobs/:id
func (s *Server) UpdateJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.JobInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	job, err := s.jobService.UpdateJob(c.UserContext(), scopeFrom(c), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(job)
}

// DeleteJob handles DELETE /api/employer/jobs/:id and /api/admin/jobs/:id
func (s *Server) DeleteJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.jobService.DeleteJob(c.UserContext(), scopeFrom(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EmployerApplications handles GET /api/employer/applications. The legacy
// action=set_status&id=&to= form reviews an application before listing.
func (s *Server) EmployerApplications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	scope := scopeFrom(c)

	if c.Query("action") == "set_status" {
		appID, err := s.queryID(c, "id")
		if err != nil {
			return nil
		}
		if err := s.applicationService.SetApplicationStatus(ctx, scope, appID, c.Query("to")); err != nil {
			return s.respondError(c, err)
		}
	}

	result, err := s.applicationService.ListForScope(ctx, scope, listing.ParseApplicationFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// GetApplication handles GET /api/employer/applications/:id
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	app, err := s.applicationService.GetForScope(c.UserContext(), scopeFrom(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(app)
}

// DownloadApplicationCV handles GET /api/employer/applications/:id/cv
func (s *Server) DownloadApplicationCV(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	app, err := s.applicationService.GetForScope(c.UserContext(), scopeFrom(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	path, err := s.files.Path(app.CVFile)
	if err != nil {
		return s.respondError(c, models.NewNotFoundError("CV", id))
	}
	return c.Download(path)
}

// SetApplicationStatus handles PATCH /api/employer/applications/:id/status
func (s *Server) SetApplicationStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.applicationService.SetApplicationStatus(c.UserContext(), scopeFrom(c), id, req.Status); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "status": req.Status})
}
