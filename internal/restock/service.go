package restock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox/payloads"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// StockLedger receives restocked goods.
type StockLedger interface {
	Increment(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, amount decimal.Decimal) (inventory.Movement, error)
}

// StockJournal records received stock.
type StockJournal interface {
	Record(ctx context.Context, tx *gorm.DB, entry ledger.Entry) (*models.StockMovement, error)
}

var allowedTransitions = map[enums.ProviderOrderStatus][]enums.ProviderOrderStatus{
	enums.ProviderOrderStatusPending:   {enums.ProviderOrderStatusSent, enums.ProviderOrderStatusCancelled},
	enums.ProviderOrderStatusSent:      {enums.ProviderOrderStatusConfirmed, enums.ProviderOrderStatusCancelled},
	enums.ProviderOrderStatusConfirmed: {enums.ProviderOrderStatusShipped, enums.ProviderOrderStatusCancelled},
	enums.ProviderOrderStatusShipped:   {enums.ProviderOrderStatusReceived, enums.ProviderOrderStatusCancelled},
}

// CanTransition reports whether a provider order may move from one status to another.
func CanTransition(from, to enums.ProviderOrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Service exposes provider orders to the API: reads plus status updates.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProviderOrderList, error)
	Get(ctx context.Context, id uuid.UUID) (*ProviderOrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ProviderOrderStatus) (*ProviderOrderDTO, error)
}

type service struct {
	repo   Repository
	ledger  StockLedger
	journal StockJournal
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, stock StockLedger, journal StockJournal, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("provider order repository required")
	}
	if stock == nil {
		return nil, errors.New("stock ledger required")
	}
	if journal == nil {
		return nil, errors.New("stock journal required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if publisher == nil {
		return nil, errors.New("outbox publisher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, ledger: stock, journal: journal, tx: tx, outbox: publisher, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProviderOrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]any{"field": "status"})
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"field": "cursor"})
	}
	rows, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list provider orders")
	}
	page := pagination.Trim(rows, params.Limit, func(order models.ProviderOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: order.CreatedAt, ID: order.ID}
	})
	out := &ProviderOrderList{Orders: make([]ProviderOrderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, order := range page.Items {
		out.Orders = append(out.Orders, mapProviderOrder(order))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProviderOrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("providerOrderId")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id, "load provider order")
	}
	dto := mapProviderOrder(*order)
	return &dto, nil
}

// UpdateStatus moves a provider order along its pipeline. SENT records the email
// stamp; RECEIVED puts every line's quantity back into the admin inventory.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ProviderOrderStatus) (*ProviderOrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("providerOrderId")
	}
	if status == "" {
		return nil, pkgerrors.MissingField("status")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown provider order status %q", status)).
			WithDetails(map[string]any{"field": "status"})
	}

	var from enums.ProviderOrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "load provider order")
		}
		from = order.Status
		if from == status {
			return pkgerrors.New(pkgerrors.CodeNoOp, fmt.Sprintf("provider order is already %s", status)).
				WithDetails(map[string]any{"status": status})
		}
		if !CanTransition(from, status) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move provider order from %s to %s", from, status)).
				WithDetails(map[string]any{"from": from, "to": status})
		}

		updates := map[string]any{"status": status}
		now := s.now().UTC()
		switch status {
		case enums.ProviderOrderStatusSent:
			updates["email_sent"] = true
			updates["email_sent_at"] = now
		case enums.ProviderOrderStatusReceived:
			for _, line := range order.Items {
				movement, err := s.ledger.Increment(ctx, tx, line.AdminItemID, line.Quantity)
				if err != nil {
					return err
				}
				if _, err := s.journal.Record(ctx, tx, ledger.Entry{
					AdminItemID:     line.AdminItemID,
					ProviderOrderID: &order.ID,
					Reason:          enums.StockMovementProviderOrderReceived,
					Before:          movement.Before,
					After:           movement.After,
				}); err != nil {
					return err
				}
			}
			updates["received_at"] = now
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update provider order status")
		}

		err = s.outbox.Emit(ctx, tx, outboxEvent(order, status))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "queue provider order event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(s.logg.WithProviderOrderID(ctx, id.String()), map[string]any{
		"from": from,
		"to":   status,
	})
	s.logg.Info(ctx, "provider order status updated")
	return s.Get(ctx, id)
}

func outboxEvent(order *models.ProviderOrder, to enums.ProviderOrderStatus) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventProviderOrderStatusChanged,
		AggregateType: enums.AggregateProviderOrder,
		AggregateID:   order.ID,
		Data: payloads.ProviderOrderStatusChangedEvent{
			ProviderOrderID: order.ID,
			ProviderID:      order.ProviderID,
			From:            order.Status,
			To:              to,
		},
	}
}

func notFoundOr(err error, id uuid.UUID, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "provider order not found").
			WithDetails(map[string]any{"providerOrderId": id.String()})
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, action)
}
