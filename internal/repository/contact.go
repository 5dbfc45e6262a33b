package repository

import (
	"context"

	"jobboard/internal/listing"
	"jobboard/internal/models"

	"gorm.io/gorm"
)

// ContactRepository defines persistence operations for contact form messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, q listing.Query) (*listing.Result[models.ContactMessage], error)
	MarkRead(ctx context.Context, id uint) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) List(ctx context.Context, q listing.Query) (*listing.Result[models.ContactMessage], error) {
	res, err := listing.Fetch[models.ContactMessage](ctx, r.db, q)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return res, nil
}

func (r *contactRepository) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Contact message", id)
	}
	return nil
}
