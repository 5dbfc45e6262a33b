package server

import (
	"context"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "userID"
	localClaims = "claims"
	localScope  = "scope"
)

// bearerToken reads the access token from the Authorization header. Browsers
// cannot set headers on a WebSocket handshake, so the token query parameter
// is accepted as well.
func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}

// authenticate verifies the token and resolves the caller's scope. It
// returns an AppError suitable for RespondWithError.
func (s *Server) authenticate(c *fiber.Ctx, raw string) (*service.Claims, authz.Scope, error) {
	claims, err := s.authService.Tokens().Parse(raw)
	if err != nil {
		return nil, authz.Scope{}, err
	}
	if s.authService.IsRevoked(c.UserContext(), claims.JTI) {
		return nil, authz.Scope{}, models.NewUnauthorizedError("Token has been revoked")
	}

	scope, err := s.resolver.Resolve(c.UserContext(), authz.Principal{UserID: claims.UserID, Role: claims.Role})
	if err != nil {
		return nil, authz.Scope{}, err
	}
	if scope.IsAnonymous() {
		return nil, authz.Scope{}, models.NewUnauthorizedError("Account no longer exists")
	}
	return claims, scope, nil
}

func (s *Server) attach(c *fiber.Ctx, claims *service.Claims, scope authz.Scope) {
	c.Locals(localUserID, claims.UserID)
	c.Locals(localClaims, claims)
	c.Locals(localScope, scope)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
	c.SetUserContext(ctx)
}

// AuthRequired rejects requests without a valid, unrevoked token and stores
// the resolved scope in the request locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, scope, err := s.authenticate(c, raw)
		if err != nil {
			return s.respondError(c, err)
		}
		s.attach(c, claims, scope)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's scope when a valid token is present and
// falls back to the anonymous scope otherwise.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return c.Next()
		}
		claims, scope, err := s.authenticate(c, raw)
		if err != nil {
			if models.IsCode(err, models.CodeForbidden) {
				return s.respondError(c, err)
			}
			return c.Next()
		}
		s.attach(c, claims, scope)
		return c.Next()
	}
}

// RoleRequired lets through only scopes of the listed kinds. It must run
// after AuthRequired.
func (s *Server) RoleRequired(kinds ...authz.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := scopeFrom(c).Kind()
		for _, k := range kinds {
			if kind == k {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Your account type cannot access this resource"))
	}
}

// AdminRequired ensures the user is an admin
func (s *Server) AdminRequired() fiber.Handler {
	return s.RoleRequired(authz.KindAdmin)
}

// scopeFrom returns the scope attached by the auth middleware, or the
// anonymous scope.
func scopeFrom(c *fiber.Ctx) authz.Scope {
	if scope, ok := c.Locals(localScope).(authz.Scope); ok {
		return scope
	}
	return authz.Anonymous()
}

func claimsFrom(c *fiber.Ctx) *service.Claims {
	claims, _ := c.Locals(localClaims).(*service.Claims)
	return claims
}
