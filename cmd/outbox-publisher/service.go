package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wholesale-backoffice/pkg/config"
	"github.com/angelmondragon/wholesale-backoffice/pkg/db/models"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/metrics"
	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox/registry"
)

const (
	fallbackBatchSize   = 50
	fallbackPoll        = 500 * time.Millisecond
	fallbackMaxAttempts = 10
	fallbackSendTimeout = 15 * time.Second
	errorBackoffCap     = 10 * time.Second
	jitterWindow        = 250 * time.Millisecond
)

// parkReason labels why a row stopped being retried.
type parkReason string

const (
	parkNonRetryable parkReason = "non_retryable"
	parkMaxAttempts  parkReason = "max_attempts"
)

type outcome int

const (
	outcomeSent outcome = iota
	outcomeRetry
	outcomeParked
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pinger interface {
	Ping(context.Context) error
}

type eventStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// sink hands one message to a topic and waits for the broker's ack.
type sink interface {
	Send(ctx context.Context, topic string, msg *gcppubsub.Message) error
}

type ServiceParams struct {
	Outbox   config.OutboxConfig
	Logger   *logger.Logger
	DB       dbClient
	PubSub   pinger
	Store    eventStore
	Registry eventResolver
	Sink     sink
	Metrics  *metrics.OutboxMetrics
}

// Service relays committed order and restock events from outbox_events to
// their Pub/Sub topics.
type Service struct {
	logg        *logger.Logger
	db          dbClient
	pubsub      pinger
	store       eventStore
	registry    eventResolver
	sink        sink
	metrics     *metrics.OutboxMetrics
	batchSize   int
	maxAttempts int
	poll        time.Duration
	sendTimeout time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Store == nil:
		return nil, errors.New("outbox store is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	case params.Sink == nil:
		return nil, errors.New("topic sink is required")
	}

	cfg := params.Outbox
	s := &Service{
		logg:        params.Logger,
		db:          params.DB,
		pubsub:      params.PubSub,
		store:       params.Store,
		registry:    params.Registry,
		sink:        params.Sink,
		metrics:     params.Metrics,
		batchSize:   fallbackBatchSize,
		maxAttempts: fallbackMaxAttempts,
		poll:        fallbackPoll,
		sendTimeout: fallbackSendTimeout,
	}
	if cfg.BatchSize > 0 {
		s.batchSize = cfg.BatchSize
	}
	if cfg.MaxAttempts > 0 {
		s.maxAttempts = cfg.MaxAttempts
	}
	if cfg.PollIntervalMS > 0 {
		s.poll = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	}
	if cfg.PublishTimeout > 0 {
		s.sendTimeout = cfg.PublishTimeout
	}
	return s, nil
}

// Run drains the outbox until ctx ends. A full batch is followed by another
// drain right away; a partial or empty one waits a poll interval.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	wait := s.poll
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		stats, err := s.drain(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox batch failed", err)
			wait = growBackoff(wait, s.poll)
		} else {
			wait = s.poll
			if stats.fetched > 0 {
				s.logg.Info(s.logg.WithFields(ctx, stats.fields()), "outbox batch drained")
			}
			if stats.fetched >= s.batchSize {
				continue
			}
		}

		if err := sleep(ctx, jittered(wait)); err != nil {
			return err
		}
	}
}

func (s *Service) ready(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		s.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		s.logg.Error(ctx, "pubsub ping failed", err)
		return fmt.Errorf("pubsub ping failed: %w", err)
	}
	return nil
}

type batchStats struct {
	fetched int
	sent    int
	retried int
	parked  int
}

func (b *batchStats) add(o outcome) {
	switch o {
	case outcomeSent:
		b.sent++
	case outcomeRetry:
		b.retried++
	case outcomeParked:
		b.parked++
	}
}

func (b batchStats) fields() map[string]any {
	return map[string]any{
		"fetched": b.fetched,
		"sent":    b.sent,
		"retried": b.retried,
		"parked":  b.parked,
	}
}

// drain locks one batch of due rows, sends each and records the result in
// the same transaction.
func (s *Service) drain(ctx context.Context) (batchStats, error) {
	var stats batchStats
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.store.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		stats = batchStats{fetched: len(events)}
		for _, event := range events {
			d := s.deliver(ctx, event)
			if err := s.settle(ctx, tx, event, d); err != nil {
				return err
			}
			stats.add(d.outcome)
		}
		return nil
	})
	return stats, err
}

type delivery struct {
	outcome outcome
	reason  parkReason
	topic   string
	eventID string
	err     error
}

func (s *Service) deliver(ctx context.Context, event models.OutboxEvent) delivery {
	resolved, err := s.registry.Resolve(event)
	if err == nil && resolved == nil {
		err = fmt.Errorf("event type %s is not registered", event.EventType)
	}
	if err != nil {
		return delivery{outcome: outcomeParked, reason: parkNonRetryable, err: err}
	}

	d := delivery{topic: resolved.Descriptor.Topic, eventID: resolved.Envelope.EventID}
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	err = s.sink.Send(sendCtx, d.topic, buildMessage(event, resolved))

	var nonRetry registry.NonRetryableError
	switch {
	case err == nil:
		d.outcome = outcomeSent
	case errors.As(err, &nonRetry):
		d.outcome, d.reason, d.err = outcomeParked, parkNonRetryable, err
	case event.AttemptCount+1 >= s.maxAttempts:
		d.outcome, d.reason = outcomeParked, parkMaxAttempts
		d.err = fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, err)
	default:
		d.outcome, d.err = outcomeRetry, err
	}
	return d
}

// settle writes a delivery back to its row. Parked rows keep their payload
// for manual replay.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, d delivery) error {
	eventType := string(event.EventType)
	switch d.outcome {
	case outcomeSent:
		if err := s.store.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark %s published: %w", event.ID, err)
		}
		s.metrics.IncPublished(eventType)
	case outcomeRetry:
		s.logg.Warn(s.logg.WithFields(ctx, deliveryFields(event, d)), "outbox publish failed, will retry")
		if err := s.store.MarkFailedTx(tx, event.ID, d.err); err != nil {
			return fmt.Errorf("mark %s failed: %w", event.ID, err)
		}
		s.metrics.IncFailed(eventType)
	case outcomeParked:
		s.logg.Warn(s.logg.WithFields(ctx, deliveryFields(event, d)), "outbox event parked")
		if err := s.store.MarkTerminalTx(tx, event.ID, d.err, s.maxAttempts); err != nil {
			return fmt.Errorf("park %s: %w", event.ID, err)
		}
		s.metrics.IncTerminal(eventType, string(d.reason))
	}
	return nil
}

// buildMessage sends the stored envelope as the body. Routing ids for the
// aggregate go into attributes.
func buildMessage(event models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	eventID := resolved.Envelope.EventID
	if eventID == "" {
		eventID = event.ID.String()
	}
	attrs := map[string]string{
		"event_id":       eventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"schema_version": strconv.Itoa(resolved.Envelope.Version),
	}
	if !resolved.Envelope.OccurredAt.IsZero() {
		attrs["occurred_at"] = resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	switch event.AggregateType {
	case enums.AggregateOrder:
		attrs["order_id"] = event.AggregateID.String()
	case enums.AggregateProviderOrder:
		attrs["provider_order_id"] = event.AggregateID.String()
	case enums.AggregateInventoryItem:
		attrs["admin_item_id"] = event.AggregateID.String()
	}
	return &gcppubsub.Message{Data: event.Payload, Attributes: attrs}
}

func deliveryFields(event models.OutboxEvent, d delivery) map[string]any {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"aggregate_id":  event.AggregateID.String(),
		"attempt_count": event.AttemptCount + 1,
	}
	if d.topic != "" {
		fields["topic"] = d.topic
	}
	if d.eventID != "" {
		fields["event_id"] = d.eventID
	}
	if d.reason != "" {
		fields["park_reason"] = d.reason
	}
	if d.err != nil {
		fields["error"] = d.err.Error()
	}
	return fields
}

func growBackoff(current, floor time.Duration) time.Duration {
	return min(max(current*2, floor), errorBackoffCap)
}

func jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
