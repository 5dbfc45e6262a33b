package server

import (
	"jobboard/internal/listing"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCompanies handles GET /api/companies
func (s *Server) ListCompanies(c *fiber.Ctx) error {
	result, err := s.companyService.List(c.UserContext(), listing.ParseCompanyFilter(query(c)))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// GetCompany handles GET /api/companies/:id
func (s *Server) GetCompany(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.companyService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(detail)
}

// ListCategories handles GET /api/categories
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(categories)
}

// SubmitContact handles POST /api/contact
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req service.ContactInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.contactService.Submit(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      msg.ID,
		"message": "Thank you, we will get back to you soon.",
	})
}
