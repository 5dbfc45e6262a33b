package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"

	"gorm.io/gorm"
)

const adminTokenBytes = 32

// AdminTokenService manages the invite tokens that gate admin sign-up.
type AdminTokenService struct {
	db         *gorm.DB
	tokens     repository.AdminTokenRepository
	defaultTTL time.Duration
	now        func() time.Time
}

func NewAdminTokenService(db *gorm.DB, defaultTTL time.Duration) *AdminTokenService {
	return &AdminTokenService{
		db:         db,
		tokens:     repository.NewAdminTokenRepository(db),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// IssuedToken carries the plaintext token. It is never retrievable again.
type IssuedToken struct {
	Token  string                   `json:"token"`
	Record *models.AdminInviteToken `json:"record"`
}

// Issue creates a new invite token. A zero ttl uses the configured default.
func (s *AdminTokenService) Issue(ctx context.Context, label string, ttl time.Duration, createdBy *uint) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	raw := make([]byte, adminTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, models.NewInternalError(err)
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)

	rec := &models.AdminInviteToken{
		TokenHash: HashAdminToken(plain),
		Label:     strings.TrimSpace(label),
		CreatedBy: createdBy,
		ExpiresAt: s.now().UTC().Add(ttl),
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "admin invite token issued", "token_id", rec.ID, "expires_at", rec.ExpiresAt)
	return &IssuedToken{Token: plain, Record: rec}, nil
}

func (s *AdminTokenService) Revoke(ctx context.Context, id uint) error {
	return s.tokens.Revoke(ctx, id, s.now().UTC())
}

func (s *AdminTokenService) List(ctx context.Context) ([]models.AdminInviteToken, error) {
	return s.tokens.List(ctx)
}

// RegisterAdmin redeems token and creates an admin account. The token is
// consumed in the same transaction as the insert, so it can be used once.
func (s *AdminTokenService) RegisterAdmin(ctx context.Context, token string, in RegisterInput) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NewForbiddenError("Invalid admin token")
	}

	user, err := newUser(in, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens := repository.NewAdminTokenRepository(tx)
		rec, err := tokens.GetByHash(ctx, HashAdminToken(token))
		if err != nil {
			return err
		}
		if rec == nil || !rec.Usable(now) {
			return models.NewForbiddenError("Invalid admin token")
		}

		if err := createUser(ctx, repository.NewUserRepository(tx), user); err != nil {
			return err
		}

		consumed, err := tokens.MarkUsed(ctx, rec.ID, user.ID, now)
		if err != nil {
			return err
		}
		if !consumed {
			return models.NewForbiddenError("Invalid admin token")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "admin registered", "user_id", user.ID)
	return user, nil
}

// RequireAdmin is a guard for admin-only service calls.
func RequireAdmin(scope authz.Scope) error {
	if !scope.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

// HashAdminToken returns the hex SHA-256 of a plaintext token.
func HashAdminToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
