package restock

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/metrics"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox/payloads"
)

const (
	modeCreated  = "created"
	modeAppended = "appended"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PlannerParams wires the restock planner.
type PlannerParams struct {
	Repo       Repository
	Items      inventory.Repository
	Tx         txRunner
	Outbox     outboxPublisher
	Multiplier decimal.Decimal
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
}

// Planner turns low-stock admin items into PENDING provider orders.
type Planner struct {
	repo       Repository
	items      inventory.Repository
	tx         txRunner
	outbox     outboxPublisher
	multiplier decimal.Decimal
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
}

func NewPlanner(params PlannerParams) (*Planner, error) {
	if params.Repo == nil {
		return nil, errors.New("provider order repository required")
	}
	if params.Items == nil {
		return nil, errors.New("inventory repository required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox publisher required")
	}
	multiplier := params.Multiplier
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromInt(2)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Planner{
		repo:       params.Repo,
		items:      params.Items,
		tx:         params.Tx,
		outbox:     params.Outbox,
		multiplier: multiplier,
		metrics:    params.Metrics,
		logg:       logg,
	}, nil
}

type providerBatch struct {
	providerID uuid.UUID
	items      []models.InventoryItem
}

// CheckAndCreateOrders scans the admin inventory and, per provider, appends the
// missing low-stock items to the oldest PENDING provider order or opens a new one.
// The whole run is one transaction.
func (p *Planner) CheckAndCreateOrders(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		CreatedOrderIDs:  []uuid.UUID{},
		AppendedOrderIDs: []uuid.UUID{},
	}
	var createdLines, appendedLines int

	err := p.tx.WithTx(ctx, func(tx *gorm.DB) error {
		all, err := p.items.WithTx(tx).ListAll(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "scan inventory")
		}

		byProvider := map[uuid.UUID]*providerBatch{}
		for _, item := range all {
			if !inventory.IsLowStock(item) {
				continue
			}
			summary.LowStockCount++
			if err := p.emitLowStock(ctx, tx, item); err != nil {
				return err
			}
			if item.ProviderID == nil {
				summary.SkippedNoProvider++
				continue
			}
			batch, ok := byProvider[*item.ProviderID]
			if !ok {
				batch = &providerBatch{providerID: *item.ProviderID}
				byProvider[*item.ProviderID] = batch
			}
			batch.items = append(batch.items, item)
		}

		batches := make([]*providerBatch, 0, len(byProvider))
		for _, batch := range byProvider {
			batches = append(batches, batch)
		}
		sort.Slice(batches, func(i, j int) bool {
			return batches[i].providerID.String() < batches[j].providerID.String()
		})

		repo := p.repo.WithTx(tx)
		for _, batch := range batches {
			existing, err := repo.FindOldestPending(ctx, batch.providerID)
			switch {
			case err == nil:
				added, err := p.appendTo(ctx, tx, repo, existing, batch.items)
				if err != nil {
					return err
				}
				if added > 0 {
					appendedLines += added
					summary.AppendedOrderIDs = append(summary.AppendedOrderIDs, existing.ID)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				id, err := p.create(ctx, tx, repo, batch)
				if err != nil {
					return err
				}
				createdLines += len(batch.items)
				summary.CreatedOrderIDs = append(summary.CreatedOrderIDs, id)
			default:
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load pending provider order")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.metrics.SetLowStockItems(summary.LowStockCount)
	p.metrics.AddRestockLines(modeCreated, createdLines)
	p.metrics.AddRestockLines(modeAppended, appendedLines)
	p.logg.Info(p.logg.WithFields(ctx, map[string]any{
		"low_stock":       summary.LowStockCount,
		"skipped":         summary.SkippedNoProvider,
		"orders_created":  len(summary.CreatedOrderIDs),
		"orders_appended": len(summary.AppendedOrderIDs),
	}), "restock check completed")
	return summary, nil
}

func (p *Planner) create(ctx context.Context, tx *gorm.DB, repo Repository, batch *providerBatch) (uuid.UUID, error) {
	order := &models.ProviderOrder{
		ProviderID: batch.providerID,
		Status:     enums.ProviderOrderStatusPending,
	}
	lines := make([]models.ProviderOrderItem, 0, len(batch.items))
	for _, item := range batch.items {
		line := p.lineFor(item)
		order.TotalAmount = order.TotalAmount.Add(line.TotalPrice)
		lines = append(lines, line)
	}
	if err := repo.Create(ctx, order); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create provider order")
	}
	for i := range lines {
		lines[i].ProviderOrderID = order.ID
	}
	if err := repo.CreateItems(ctx, lines); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create provider order items")
	}

	err := p.emit(ctx, tx, enums.EventProviderOrderCreated, order.ID, payloads.ProviderOrderCreatedEvent{
		ProviderOrderID: order.ID,
		ProviderID:      order.ProviderID,
		TotalAmount:     order.TotalAmount,
		Lines:           eventLines(lines),
	})
	return order.ID, err
}

// appendTo adds the batch items the order does not already carry and returns how
// many lines were written.
func (p *Planner) appendTo(ctx context.Context, tx *gorm.DB, repo Repository, order *models.ProviderOrder, items []models.InventoryItem) (int, error) {
	present := make(map[uuid.UUID]struct{}, len(order.Items))
	for _, line := range order.Items {
		present[line.AdminItemID] = struct{}{}
	}

	var lines []models.ProviderOrderItem
	for _, item := range items {
		if _, ok := present[item.ID]; ok {
			continue
		}
		line := p.lineFor(item)
		line.ProviderOrderID = order.ID
		lines = append(lines, line)
		present[item.ID] = struct{}{}
	}
	if len(lines) == 0 {
		return 0, nil
	}
	if err := repo.CreateItems(ctx, lines); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "append provider order items")
	}

	total := decimal.Zero
	for _, line := range order.Items {
		total = total.Add(line.TotalPrice)
	}
	for _, line := range lines {
		total = total.Add(line.TotalPrice)
	}
	if err := repo.Update(ctx, order.ID, map[string]any{"total_amount": total}); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update provider order total")
	}

	err := p.emit(ctx, tx, enums.EventProviderOrderItemsAppended, order.ID, payloads.ProviderOrderItemsAppendedEvent{
		ProviderOrderID: order.ID,
		ProviderID:      order.ProviderID,
		TotalAmount:     total,
		Lines:           eventLines(lines),
	})
	return len(lines), err
}

func (p *Planner) lineFor(item models.InventoryItem) models.ProviderOrderItem {
	qty := RestockQuantity(item, p.multiplier)
	price := item.Price()
	return models.ProviderOrderItem{
		AdminItemID:  item.ID,
		ItemName:     item.Name,
		Unit:         item.Unit,
		Quantity:     qty,
		PricePerUnit: price,
		TotalPrice:   qty.Mul(price).Round(2),
	}
}

// RestockQuantity is the amount that lifts item to threshold*multiplier, never below one
// unit. Fractions beyond the quantity column scale round up.
func RestockQuantity(item models.InventoryItem, multiplier decimal.Decimal) decimal.Decimal {
	qty := item.Threshold().Mul(multiplier).Sub(item.Quantity).RoundCeil(inventory.QuantityScale)
	one := decimal.NewFromInt(1)
	if qty.LessThan(one) {
		return one
	}
	return qty
}

func (p *Planner) emitLowStock(ctx context.Context, tx *gorm.DB, item models.InventoryItem) error {
	err := p.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventInventoryLowStock,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ID,
		Data: payloads.InventoryLowStockEvent{
			AdminItemID: item.ID,
			Quantity:    item.Quantity,
			Threshold:   item.Threshold(),
			ProviderID:  item.ProviderID,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "queue low stock event")
	}
	return nil
}

func (p *Planner) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID uuid.UUID, data any) error {
	err := p.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateProviderOrder,
		AggregateID:   orderID,
		Data:          data,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "queue provider order event")
	}
	return nil
}

func eventLines(items []models.ProviderOrderItem) []payloads.ProviderOrderLine {
	out := make([]payloads.ProviderOrderLine, 0, len(items))
	for _, item := range items {
		out = append(out, payloads.ProviderOrderLine{
			AdminItemID: item.AdminItemID,
			Quantity:    item.Quantity,
		})
	}
	return out
}
