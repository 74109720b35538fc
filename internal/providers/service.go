package providers

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

type ProviderDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactName *string   `json:"contactName,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address     *string   `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=160"`
	ContactName *string `json:"contactName,omitempty" validate:"omitempty,max=160"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type UpdateInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=160"`
	ContactName *string `json:"contactName,omitempty" validate:"omitempty,max=160"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// Service manages the suppliers restock orders are raised against.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProviderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProviderDTO, error)
	List(ctx context.Context) ([]ProviderDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProviderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	db   *gorm.DB
	repo repo.Base[models.Provider]
}

func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, errors.New("db required")
	}
	return &service{db: db, repo: repo.NewBase[models.Provider](db)}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProviderDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.MissingField("name")
	}
	provider := &models.Provider{
		Name:        name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
	}
	if err := s.repo.Create(ctx, provider); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create provider")
	}
	return s.Get(ctx, provider.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProviderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("id")
	}
	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load provider")
	}
	dto := mapProvider(*provider)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]ProviderDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list providers")
	}
	out := make([]ProviderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapProvider(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProviderDTO, error) {
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
	optional := map[string]*string{
		"contact_name": input.ContactName,
		"email":        input.Email,
		"phone":        input.Phone,
		"address":      input.Address,
	}
	for column, value := range optional {
		if value != nil {
			updates[column] = *value
		}
	}
	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update provider")
	}
	if affected == 0 {
		return nil, notFound(id)
	}
	return s.Get(ctx, id)
}

// Delete refuses while admin items or provider orders reference the provider.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.MissingField("id")
	}
	db := s.db.WithContext(ctx)
	var items, orders int64
	if err := db.Model(&models.InventoryItem{}).Where("provider_id = ?", id).Count(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "count provider items")
	}
	if err := db.Model(&models.ProviderOrder{}).Where("provider_id = ?", id).Count(&orders).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "count provider orders")
	}
	if items > 0 || orders > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "provider is still referenced").
			WithDetails(map[string]any{"providerId": id.String(), "items": items, "providerOrders": orders})
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete provider")
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

func mapProvider(p models.Provider) ProviderDTO {
	return ProviderDTO{
		ID:          p.ID,
		Name:        p.Name,
		ContactName: p.ContactName,
		Email:       p.Email,
		Phone:       p.Phone,
		Address:     p.Address,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func notFound(id uuid.UUID) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "provider not found").
		WithDetails(map[string]any{"providerId": id.String()})
}
