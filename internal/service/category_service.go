package service

import (
	"context"
	"strings"

	"jobboard/internal/authz"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/validation"
)

type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, scope authz.Scope, name, icon string) (*models.Category, error) {
	if err := RequireAdmin(scope); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validation.Required("name", name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	c := &models.Category{Name: name, Icon: strings.TrimSpace(icon)}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
