package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/wholesale-backoffice/internal/orders"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

// PaymentDeadlineJobParams configure the overdue order sweep.
type PaymentDeadlineJobParams struct {
	Logger *logger.Logger
	Orders overdueOrderReader
	Cancel orderCanceller
}

type overdueOrderReader interface {
	FindPendingPastDeadline(ctx context.Context, now time.Time) ([]models.Order, error)
}

type orderCanceller interface {
	CancelOrder(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error)
}

// NewPaymentDeadlineJob cancels PENDING orders whose payment deadline has passed,
// restoring their stock through the regular cancel path.
func NewPaymentDeadlineJob(params PaymentDeadlineJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("overdue order reader required")
	}
	if params.Cancel == nil {
		return nil, fmt.Errorf("order canceller required")
	}
	return &paymentDeadlineJob{
		logg:   params.Logger,
		orders: params.Orders,
		cancel: params.Cancel,
		now:    time.Now,
	}, nil
}

type paymentDeadlineJob struct {
	logg   *logger.Logger
	orders overdueOrderReader
	cancel orderCanceller
	now    func() time.Time
}

func (j *paymentDeadlineJob) Name() string { return "payment-deadline" }

func (j *paymentDeadlineJob) Run(ctx context.Context) error {
	overdue, err := j.orders.FindPendingPastDeadline(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("query overdue orders: %w", err)
	}

	var errs error
	cancelled := 0
	for _, order := range overdue {
		orderCtx := j.logg.WithOrderID(ctx, order.ID.String())
		if _, err := j.cancel.CancelOrder(orderCtx, order.ID); err != nil {
			// moved on since the query ran
			if pkgerrors.HasCode(err, pkgerrors.CodeInvalidState) || pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("cancel order %s: %w", order.ID, err))
			continue
		}
		cancelled++
		j.logg.Info(orderCtx, "order cancelled after payment deadline")
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"overdue":   len(overdue),
		"cancelled": cancelled,
	}), "payment deadline sweep complete")
	return errs
}
