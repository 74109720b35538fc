package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// Service records and reads the stock movement journal.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) (*models.StockMovement, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) (*MovementList, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]MovementDTO, error)
}

// Entry captures one applied quantity change. Record writes it through the
// caller's transaction.
type Entry struct {
	AdminItemID     uuid.UUID
	OrderID         *uuid.UUID
	ProviderOrderID *uuid.UUID
	Reason          enums.StockMovementReason
	Before          decimal.Decimal
	After           decimal.Decimal
	Note            string
}

// MovementDTO is the API shape of a stock movement.
type MovementDTO struct {
	ID              uuid.UUID                 `json:"id"`
	AdminItemID     uuid.UUID                 `json:"adminItemId"`
	OrderID         *uuid.UUID                `json:"orderId,omitempty"`
	ProviderOrderID *uuid.UUID                `json:"providerOrderId,omitempty"`
	Reason          enums.StockMovementReason `json:"reason"`
	Delta           decimal.Decimal           `json:"delta"`
	QuantityBefore  decimal.Decimal           `json:"quantityBefore"`
	QuantityAfter   decimal.Decimal           `json:"quantityAfter"`
	Note            *string                   `json:"note,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
}

// MovementList wraps a newest-first page of movements.
type MovementList struct {
	Movements  []MovementDTO `json:"movements"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a journal service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("stock movement repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) (*models.StockMovement, error) {
	if entry.AdminItemID == uuid.Nil {
		return nil, pkgerrors.MissingField("adminItemId")
	}
	if !entry.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock movement reason").
			WithDetails(map[string]any{"reason": entry.Reason})
	}
	delta := entry.After.Sub(entry.Before)
	if delta.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock movement must change the quantity").
			WithDetails(map[string]any{"adminItemId": entry.AdminItemID.String()})
	}

	movement := &models.StockMovement{
		AdminItemID:     entry.AdminItemID,
		OrderID:         entry.OrderID,
		ProviderOrderID: entry.ProviderOrderID,
		Reason:          entry.Reason,
		Delta:           delta,
		QuantityBefore:  entry.Before,
		QuantityAfter:   entry.After,
	}
	if note := strings.TrimSpace(entry.Note); note != "" {
		movement.Note = &note
	}
	if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "record stock movement")
	}
	return movement, nil
}

func (s *service) ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) (*MovementList, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.MissingField("itemId")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"field": "cursor"})
	}
	rows, err := s.repo.ListByItem(ctx, itemID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list stock movements")
	}
	page := pagination.Trim(rows, params.Limit, func(m models.StockMovement) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	out := &MovementList{Movements: make([]MovementDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, m := range page.Items {
		out.Movements = append(out.Movements, mapMovement(m))
	}
	return out, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]MovementDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.MissingField("orderId")
	}
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list order stock movements")
	}
	out := make([]MovementDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, mapMovement(m))
	}
	return out, nil
}

func mapMovement(m models.StockMovement) MovementDTO {
	return MovementDTO{
		ID:              m.ID,
		AdminItemID:     m.AdminItemID,
		OrderID:         m.OrderID,
		ProviderOrderID: m.ProviderOrderID,
		Reason:          m.Reason,
		Delta:           m.Delta,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		Note:            m.Note,
		CreatedAt:       m.CreatedAt,
	}
}
