package orders

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
	"github.com/angelmondragon/wholesale-backoffice/pkg/metrics"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox/payloads"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

// Service drives customer orders through their lifecycle. Every mutating call runs
// in a single transaction together with its ledger movements and outbox event.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderCreated, error)
	GetAllOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	AddItemToOrder(ctx context.Context, id uuid.UUID, line LineInput) (*OrderUpdated, error)
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo      Repository
	Validator *Validator
	Ledger    StockLedger
	Journal   StockJournal
	Tx        txRunner
	Outbox    outboxPublisher
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	validator *Validator
	ledger    StockLedger
	journal   StockJournal
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("order repository required")
	}
	if params.Validator == nil {
		return nil, errors.New("order validator required")
	}
	if params.Ledger == nil {
		return nil, errors.New("stock ledger required")
	}
	if params.Journal == nil {
		return nil, errors.New("stock journal required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		validator: params.Validator,
		ledger:    params.Ledger,
		journal:   params.Journal,
		tx:        params.Tx,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      logg,
		now:       now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderCreated, error) {
	var (
		created  *models.Order
		warnings []inventory.StockWarning
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		draft, err := s.validator.Validate(ctx, tx, input)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		order := &models.Order{
			CustomerID:      draft.Customer.ID,
			Status:          enums.OrderStatusPending,
			TotalAmount:     draft.TotalAmount,
			Notes:           draft.Notes,
			PaymentDeadline: draft.PaymentDeadline,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(draft.Lines))
		for i, line := range draft.Lines {
			items = append(items, orderItemFromLine(order.ID, i+1, line))
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create order items")
		}

		// The ledger sees lines in request order, so repeated items accumulate and
		// its warnings supersede the draft's.
		for _, line := range draft.Lines {
			movement, err := s.ledger.Decrement(ctx, tx, line.Item.ID, line.Quantity)
			if err != nil {
				return err
			}
			if err := s.record(ctx, tx, order.ID, enums.StockMovementOrderPlaced, movement); err != nil {
				return err
			}
			if movement.Warning != nil {
				warnings = append(warnings, *movement.Warning)
			}
		}

		event := payloads.OrderCreatedEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			TotalAmount: order.TotalAmount,
			Lines:       eventLines(items),
		}
		for _, w := range warnings {
			event.StockWarnings = append(event.StockWarnings, w.AdminItemID)
		}
		if err := s.emit(ctx, tx, enums.EventOrderCreated, order.ID, event); err != nil {
			return err
		}

		created, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.warnShortStock(ctx, warnings)
	s.metrics.IncCreated()
	s.logg.Info(ctx, "order created")
	return &OrderCreated{Order: mapOrder(*created), Warnings: warnings}, nil
}

func (s *service) GetAllOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list orders")
	}
	page := pagination.Trim(rows, params.Limit, func(order models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: order.CreatedAt, ID: order.ID}
	})
	out := &OrderList{Orders: make([]OrderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, order := range page.Items {
		out.Orders = append(out.Orders, mapOrder(order))
	}
	return out, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("orderId")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id, "load order")
	}
	dto := mapOrder(*order)
	return &dto, nil
}

// UpdateOrderStatus applies a transition from the allowed table. Cancellation is
// delegated to the cancel path so stock is restored exactly once.
func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("orderId")
	}
	if status == "" {
		return nil, pkgerrors.MissingField("status")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", status)).
			WithDetails(map[string]any{"field": "status"})
	}

	var (
		updated *models.Order
		from    enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "load order")
		}
		from = order.Status
		if err := checkTransition(order.Status, status); err != nil {
			return err
		}

		if status == enums.OrderStatusCancelled {
			return s.cancelLocked(ctx, tx, order)
		}

		if err := repo.Update(ctx, order.ID, map[string]any{"status": status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update order status")
		}
		return s.emit(ctx, tx, enums.EventOrderStatusChanged, order.ID, payloads.OrderStatusChangedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			From:       from,
			To:         status,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id, "reload order")
	}
	s.metrics.IncTransition(string(from), string(status))
	ctx = s.logg.WithFields(s.logg.WithOrderID(ctx, id.String()), map[string]any{
		"from": from,
		"to":   status,
	})
	s.logg.Info(ctx, "order status updated")
	dto := mapOrder(*updated)
	return &dto, nil
}

func (s *service) CancelOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("orderId")
	}
	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "load order")
		}
		from = order.Status
		return s.cancelLocked(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id, "reload order")
	}
	s.metrics.IncTransition(string(from), string(enums.OrderStatusCancelled))
	s.logg.Info(s.logg.WithOrderID(ctx, id.String()), "order cancelled")
	dto := mapOrder(*cancelled)
	return &dto, nil
}

// cancelLocked expects order to be row-locked by tx. The terminal-state guard is
// what keeps a second cancel from restoring stock twice.
func (s *service) cancelLocked(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order.Status == enums.OrderStatusDelivered || order.Status == enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeInvalidState, fmt.Sprintf("cannot cancel a %s order", order.Status)).
			WithDetails(map[string]any{"orderId": order.ID.String(), "status": order.Status})
	}

	restored, err := s.restore(ctx, tx, order, enums.StockMovementOrderCancelled)
	if err != nil {
		return err
	}
	cancelledAt := s.now().UTC()
	if err := s.repo.WithTx(tx).Update(ctx, order.ID, map[string]any{
		"status":       enums.OrderStatusCancelled,
		"cancelled_at": cancelledAt,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "cancel order")
	}
	return s.emit(ctx, tx, enums.EventOrderCancelled, order.ID, payloads.OrderCancelledEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		From:        order.Status,
		Restored:    restored,
		CancelledAt: cancelledAt,
	})
}

// DeleteOrder hard-deletes an order. Shipped goods are out of the warehouse and
// cannot be deleted; only pending orders give their stock back.
func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.MissingField("orderId")
	}
	var status enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "load order")
		}
		status = order.Status
		if order.Status == enums.OrderStatusShipped {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "cannot delete a shipped order").
				WithDetails(map[string]any{"orderId": order.ID.String(), "status": order.Status})
		}

		var restored []payloads.OrderLine
		if order.Status == enums.OrderStatusPending {
			restored, err = s.restore(ctx, tx, order, enums.StockMovementOrderDeleted)
			if err != nil {
				return err
			}
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "delete order")
		}
		return s.emit(ctx, tx, enums.EventOrderDeleted, order.ID, payloads.OrderDeletedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Status:     order.Status,
			Restored:   restored,
		})
	})
	if err != nil {
		return err
	}
	ctx = s.logg.WithField(s.logg.WithOrderID(ctx, id.String()), "status", status)
	s.logg.Info(ctx, "order deleted")
	return nil
}

func (s *service) AddItemToOrder(ctx context.Context, id uuid.UUID, line LineInput) (*OrderUpdated, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.MissingField("orderId")
	}
	var (
		updated  *models.Order
		warnings []inventory.StockWarning
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, id, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "items can only be added to pending orders").
				WithDetails(map[string]any{"orderId": order.ID.String(), "status": order.Status})
		}

		priced, err := s.validator.ValidateLine(ctx, tx, order.CustomerID, line)
		if err != nil {
			return err
		}
		movement, err := s.ledger.Decrement(ctx, tx, priced.Item.ID, priced.Quantity)
		if err != nil {
			return err
		}
		if err := s.record(ctx, tx, order.ID, enums.StockMovementOrderItemAdded, movement); err != nil {
			return err
		}
		if movement.Warning != nil {
			warnings = append(warnings, *movement.Warning)
		}

		item := orderItemFromLine(order.ID, nextLineNo(order.Items), *priced)
		if err := repo.CreateItems(ctx, []models.OrderItem{item}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "append order item")
		}

		total := sumItems(append(order.Items, item))
		if err := repo.Update(ctx, order.ID, map[string]any{"total_amount": total}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update order total")
		}
		if err := s.emit(ctx, tx, enums.EventOrderItemAdded, order.ID, payloads.OrderItemAddedEvent{
			OrderID:      order.ID,
			Line:         eventLine(item),
			TotalAmount:  total,
			StockWarning: movement.Warning != nil,
		}); err != nil {
			return err
		}

		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, id.String())
	s.warnShortStock(ctx, warnings)
	s.logg.Info(ctx, "order item added")
	return &OrderUpdated{Order: mapOrder(*updated), Warnings: warnings}, nil
}

func (s *service) restore(ctx context.Context, tx *gorm.DB, order *models.Order, reason enums.StockMovementReason) ([]payloads.OrderLine, error) {
	restored := make([]payloads.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		movement, err := s.ledger.Increment(ctx, tx, item.AdminItemID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.record(ctx, tx, order.ID, reason, movement); err != nil {
			return nil, err
		}
		restored = append(restored, eventLine(item))
	}
	return restored, nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason enums.StockMovementReason, movement inventory.Movement) error {
	_, err := s.journal.Record(ctx, tx, ledger.Entry{
		AdminItemID: movement.Item.ID,
		OrderID:     &orderID,
		Reason:      reason,
		Before:      movement.Before,
		After:       movement.After,
	})
	return err
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID uuid.UUID, data any) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Data:          data,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "queue order event")
	}
	return nil
}

func (s *service) warnShortStock(ctx context.Context, warnings []inventory.StockWarning) {
	if len(warnings) == 0 {
		return
	}
	s.metrics.AddStockWarnings(len(warnings))
	for _, w := range warnings {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"admin_item_id": w.AdminItemID.String(),
			"item_name":     w.ItemName,
			"requested":     w.Requested.String(),
			"available":     w.Available.String(),
		}), "order line exceeds available stock")
	}
}

func orderItemFromLine(orderID uuid.UUID, lineNo int, line DraftLine) models.OrderItem {
	return models.OrderItem{
		OrderID:      orderID,
		AdminItemID:  line.Item.ID,
		LineNo:       lineNo,
		ItemName:     line.Item.Name,
		Unit:         line.Unit,
		Quantity:     line.Quantity,
		PricePerUnit: line.PricePerUnit,
		TotalPrice:   line.TotalPrice,
	}
}

func nextLineNo(items []models.OrderItem) int {
	last := 0
	for _, item := range items {
		if item.LineNo > last {
			last = item.LineNo
		}
	}
	return last + 1
}

func sumItems(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

func eventLine(item models.OrderItem) payloads.OrderLine {
	return payloads.OrderLine{
		AdminItemID: item.AdminItemID,
		Quantity:    item.Quantity,
		TotalPrice:  item.TotalPrice,
	}
}

func eventLines(items []models.OrderItem) []payloads.OrderLine {
	out := make([]payloads.OrderLine, 0, len(items))
	for _, item := range items {
		out = append(out, eventLine(item))
	}
	return out
}

func notFoundOr(err error, id uuid.UUID, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
			WithDetails(map[string]any{"orderId": id.String()})
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, action)
}
