package categories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/repo"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type UpdateInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// Service manages inventory categories.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	List(ctx context.Context) ([]CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	db   *gorm.DB
	repo repo.Base[models.Category]
}

func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, errors.New("db required")
	}
	return &service{db: db, repo: repo.NewBase[models.Category](db)}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.MissingField("name")
	}
	category := &models.Category{Name: name, Description: input.Description}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create category")
	}
	return s.Get(ctx, category.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load category")
	}
	dto := mapCategory(*category)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapCategory(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.MissingField("name")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update category")
	}
	if affected == 0 {
		return nil, notFound(id)
	}
	return s.Get(ctx, id)
}

// Delete refuses while admin items still point at the category.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.MissingField("id")
	}
	var inUse int64
	if err := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("category_id = ?", id).
		Count(&inUse).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "count category items")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has inventory items").
			WithDetails(map[string]any{"categoryId": id.String(), "items": inUse})
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete category")
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

func mapCategory(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func notFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "category not found").
		WithDetails(map[string]any{"categoryId": id.String()})
}
