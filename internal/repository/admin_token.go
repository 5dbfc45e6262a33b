package repository

import (
	"context"
	"time"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// AdminTokenRepository defines persistence operations for admin invite tokens.
type AdminTokenRepository interface {
	Create(ctx context.Context, token *models.AdminInviteToken) error
	GetByHash(ctx context.Context, hash string) (*models.AdminInviteToken, error)
	List(ctx context.Context) ([]models.AdminInviteToken, error)
	Revoke(ctx context.Context, id uint, at time.Time) error
	// MarkUsed consumes the token only if it is still unused, unrevoked and
	// unexpired at at. It reports whether the token was consumed.
	MarkUsed(ctx context.Context, id, userID uint, at time.Time) (bool, error)
}

type adminTokenRepository struct {
	db *gorm.DB
}

// NewAdminTokenRepository returns a new AdminTokenRepository implementation.
func NewAdminTokenRepository(db *gorm.DB) AdminTokenRepository {
	return &adminTokenRepository{db: db}
}

func (r *adminTokenRepository) Create(ctx context.Context, token *models.AdminInviteToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *adminTokenRepository) GetByHash(ctx context.Context, hash string) (*models.AdminInviteToken, error) {
	return firstOrNil[models.AdminInviteToken](r.db.WithContext(ctx).Where("token_hash = ?", hash))
}

func (r *adminTokenRepository) List(ctx context.Context) ([]models.AdminInviteToken, error) {
	tokens := []models.AdminInviteToken{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tokens).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tokens, nil
}

func (r *adminTokenRepository) Revoke(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.AdminInviteToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Admin token", id)
	}
	return nil
}

func (r *adminTokenRepository) MarkUsed(ctx context.Context, id, userID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AdminInviteToken{}).
		Where("id = ? AND used_at IS NULL AND revoked_at IS NULL AND expires_at > ?", id, at).
		Updates(map[string]any{"used_at": at, "used_by": userID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
