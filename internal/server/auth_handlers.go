package server

import (
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	service.RegisterInput
	AccountType string `json:"account_type"`
	Token       string `json:"token"`
}

// Login handles POST /api/auth/login. login, email and username are
// interchangeable.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	login := req.Login
	if login == "" {
		login = req.Email
	}
	if login == "" {
		login = req.Username
	}

	token, user, err := s.authService.Login(c.UserContext(), login, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Register handles POST /api/auth/register?type=jobseeker|employer
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	accountType := c.Query("type")
	if accountType == "" {
		accountType = req.AccountType
	}

	user, err := s.authService.Register(c.UserContext(), accountType, req.RegisterInput)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.respondWithSession(c, user)
}

// AdminRegister handles POST /api/auth/admin-register?token=
func (s *Server) AdminRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = strings.TrimSpace(req.Token)
	}
	if token == "" {
		return s.respondError(c, models.NewForbiddenError("An admin invite token is required"))
	}

	user, err := s.adminTokenService.RegisterAdmin(c.UserContext(), token, req.RegisterInput)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.respondWithSession(c, user)
}

func (s *Server) respondWithSession(c *fiber.Ctx, user *models.User) error {
	token, _, err := s.authService.Tokens().Issue(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), claimsFrom(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	scope := scopeFrom(c)
	user, err := s.userService.Get(c.UserContext(), scope.UserID())
	if err != nil {
		return s.respondError(c, err)
	}

	resp := fiber.Map{
		"user":       user,
		"kind":       scope.Kind(),
		"company_id": nil,
		"profile_id": nil,
	}
	if id, ok := scope.CompanyID(); ok {
		resp["company_id"] = id
	}
	if id, ok := scope.JobSeekerID(); ok {
		resp["profile_id"] = id
	}
	return c.JSON(resp)
}
