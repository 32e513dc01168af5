package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > 255 {
		return "", &ValidationError{Field: "name", Message: "cannot exceed 255 characters"}
	}
	return name, nil
}

func mapCategoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrConflict):
		return ErrCategoryExists
	}
	return err
}

func (s *categoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	category := &models.Category{ID: uuid.New(), Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, mapCategoryError(err)
	}
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapCategoryError(err)
	}
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	category := &models.Category{ID: id, Name: name}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, mapCategoryError(err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return mapCategoryError(s.categoryRepo.Delete(ctx, id))
}

func (s *categoryService) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	limit, offset = normalizePage(limit, offset)
	categories, err := s.categoryRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}
