package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/wholesale-backoffice/internal/restock"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

type restockPlanner interface {
	CheckAndCreateOrders(ctx context.Context) (*restock.Summary, error)
}

// NewRestockJob wraps the low-stock planner so it runs every cycle.
func NewRestockJob(logg *logger.Logger, planner restockPlanner) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if planner == nil {
		return nil, fmt.Errorf("restock planner required")
	}
	return &restockJob{logg: logg, planner: planner}, nil
}

type restockJob struct {
	logg    *logger.Logger
	planner restockPlanner
}

func (j *restockJob) Name() string { return "restock-check" }

func (j *restockJob) Run(ctx context.Context) error {
	summary, err := j.planner.CheckAndCreateOrders(ctx)
	if err != nil {
		return fmt.Errorf("restock check: %w", err)
	}
	if summary.SkippedNoProvider > 0 {
		j.logg.Warn(j.logg.WithField(ctx, "skipped", summary.SkippedNoProvider), "low stock items without provider")
	}
	return nil
}
