package server

import (
	"time"

	"jobboard/internal/listing"

	"github.com/gofiber/fiber/v2"
)

// AdminStats handles GET /api/admin/stats
func (s *Server) AdminStats(c *fiber.Ctx) error {
	counts, err := s.jobService.Stats(c.UserContext(), scopeFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"jobs_by_status": counts})
}

// AdminListUsers handles GET /api/admin/users?role&q&page
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	result, err := s.userService.List(c.UserContext(), scopeFrom(c), listing.ParseUserFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// AdminGetUser handles GET /api/admin/users/:id
func (s *Server) AdminGetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

// AdminSetUserStatus handles PATCH /api/admin/users/:id/status
func (s *Server) AdminSetUserStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.userService.SetStatus(c.UserContext(), scopeFrom(c), id, req.Status); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "status": req.Status})
}

// AdminListJobs handles GET /api/admin/jobs?status&q&page across all companies.
func (s *Server) AdminListJobs(c *fiber.Ctx) error {
	result, err := s.jobService.ListManagedJobs(c.UserContext(), scopeFrom(c), listing.ParseManagedJobFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// AdminSetFeatured handles PATCH /api/admin/jobs/:id/featured
func (s *Server) AdminSetFeatured(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Featured bool `json:"featured"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.jobService.SetFeatured(c.UserContext(), scopeFrom(c), id, req.Featured); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "featured": req.Featured})
}

// AdminListTokens handles GET /api/admin/tokens
func (s *Server) AdminListTokens(c *fiber.Ctx) error {
	tokens, err := s.adminTokenService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(tokens)
}

// AdminIssueToken handles POST /api/admin/tokens. The plaintext token is
// only ever returned here.
func (s *Server) AdminIssueToken(c *fiber.Ctx) error {
	var req struct {
		Label    string `json:"label"`
		TTLHours int    `json:"ttl_hours"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	createdBy := scopeFrom(c).UserID()
	issued, err := s.adminTokenService.Issue(c.UserContext(), req.Label, time.Duration(req.TTLHours)*time.Hour, &createdBy)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(issued)
}

// AdminRevokeToken handles DELETE /api/admin/tokens/:id
func (s *Server) AdminRevokeToken(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adminTokenService.Revoke(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminContactMessages handles GET /api/admin/contact-messages?unread&page
func (s *Server) AdminContactMessages(c *fiber.Ctx) error {
	result, err := s.contactService.List(c.UserContext(), scopeFrom(c), truthy(c.Query("unread")), listing.ParsePage(c.Query("page")))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// AdminMarkContactRead handles PATCH /api/admin/contact-messages/:id/read
func (s *Server) AdminMarkContactRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.contactService.MarkRead(c.UserContext(), scopeFrom(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminCreateCategory handles POST /api/admin/categories
func (s *Server) AdminCreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	category, err := s.categoryService.Create(c.UserContext(), scopeFrom(c), req.Name, req.Icon)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetFeatureFlags returns configured feature flags and their state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(uint)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
