package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/pkg/logger"
)

var tracer = otel.Tracer("ledger-txn")

// Config bounds the retry policy
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultConfig is three attempts starting at 100ms
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}
}

// Work is one attempt of a unit of work. It reads, validates authoritatively and stages writes on tx.
type Work func(ctx context.Context, tx domain.Tx, rec *Recorder) error

// Operation describes one mutating intent
type Operation struct {
	Action   domain.AuditAction
	Actor    domain.Actor
	Location string
	ItemCode string
	// Precheck is the advisory check, run once before the first attempt
	Precheck func(ctx context.Context) error
	Work     Work
}

// Outcome describes a finished invocation, committed or not
type Outcome struct {
	TransactionID string
	Attempts      int
	Audit         domain.AuditLogEntry
}

// Executor runs units of work atomically, retries them under contention
// and writes exactly one audit entry per invocation
type Executor struct {
	store   domain.Store
	cfg     Config
	metrics *Metrics
	now     func() time.Time
}

// NewExecutor creates a new executor
func NewExecutor(store domain.Store, cfg Config, metrics *Metrics) *Executor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Executor{store: store, cfg: cfg, metrics: metrics, now: time.Now}
}

func (e *Executor) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = e.cfg.BaseDelay << uint(e.cfg.MaxAttempts)
	return b
}

// Run executes op. The returned error is the terminal one: a domain error as soon as
// it occurs, or the last conflict once attempts are exhausted.
func (e *Executor) Run(ctx context.Context, op Operation) (Outcome, error) {
	txID := NewTransactionID()
	action := string(op.Action)

	ctx, span := tracer.Start(ctx, "txn."+action,
		trace.WithAttributes(
			attribute.String("txn.id", txID),
			attribute.String("txn.action", action),
			attribute.String("actor.uid", op.Actor.UID),
			attribute.String("ledger.location", op.Location),
		),
	)
	defer span.End()
	ctx = logger.WithUnit(ctx, action, txID, op.Actor.UID)

	start := e.now()
	attempts := 0
	rec := newRecorder(txID)
	var staged *domain.AuditLogEntry

	attempt := func() (struct{}, error) {
		attempts++
		rec = newRecorder(txID)

		if attempts == 1 {
			if err := op.Actor.Validate(); err != nil {
				return struct{}{}, backoff.Permanent(err)
			}
			if op.Precheck != nil {
				if err := op.Precheck(ctx); err != nil {
					return struct{}{}, backoff.Permanent(err)
				}
			}
		}

		err := e.store.InTx(ctx, func(tx domain.Tx) error {
			if err := op.Work(ctx, tx, rec); err != nil {
				return err
			}
			entry := e.newEntry(txID, op, attempts, domain.OutcomeSuccess)
			rec.fill(&entry, true)
			if err := tx.AppendAudit(ctx, &entry); err != nil {
				return fmt.Errorf("failed to stage audit entry: %w", err)
			}
			staged = &entry
			return nil
		})
		if err == nil {
			return struct{}{}, nil
		}

		if domain.IsRetryable(err) {
			e.metrics.conflicts.WithLabelValues(action).Inc()
			logger.Warn(ctx).
				Err(err).
				Int("attempt", attempts).
				Msg("Unit of work conflicted")
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(e.backOff()),
		backoff.WithMaxTries(uint(e.cfg.MaxAttempts)),
	)

	out := Outcome{TransactionID: txID, Attempts: attempts}
	elapsed := e.now().Sub(start).Seconds()
	e.metrics.attempts.WithLabelValues(action).Observe(float64(attempts))

	if err == nil {
		out.Audit = *staged
		e.metrics.runs.WithLabelValues(action, string(domain.OutcomeSuccess), "").Inc()
		e.metrics.duration.WithLabelValues(action, string(domain.OutcomeSuccess)).Observe(elapsed)
		span.SetAttributes(attribute.Int("txn.attempts", attempts))
		logger.Info(ctx).
			Int("attempt", attempts).
			Str("outcome", string(domain.OutcomeSuccess)).
			Int("quantity_delta", staged.QuantityDelta).
			Msg("Transaction committed")
		return out, nil
	}

	if domain.IsRetryable(err) {
		err = fmt.Errorf("failed after %d attempts: %w", attempts, err)
	}
	kind := domain.KindOf(err)

	entry := e.newEntry(txID, op, attempts, domain.OutcomeFailed)
	rec.fill(&entry, false)
	entry.ErrorKind = string(kind)
	entry.ErrorDetail = err.Error()

	// the unit of work never committed, so the failure entry is written on its own
	if aerr := e.store.AppendAudit(context.WithoutCancel(ctx), &entry); aerr != nil {
		logger.Error(ctx).
			Err(aerr).
			Msg("Failed to append failed audit entry")
	}
	out.Audit = entry

	e.metrics.runs.WithLabelValues(action, string(domain.OutcomeFailed), string(kind)).Inc()
	e.metrics.duration.WithLabelValues(action, string(domain.OutcomeFailed)).Observe(elapsed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	ev := logger.Warn(ctx)
	if kind == domain.KindInternal || kind == domain.KindConflict {
		ev = logger.Error(ctx)
	}
	ev.Err(err).
		Int("attempt", attempts).
		Str("outcome", string(domain.OutcomeFailed)).
		Str("error_kind", string(kind)).
		Msg("Transaction failed")

	return out, err
}

func (e *Executor) newEntry(txID string, op Operation, attempts int, outcome domain.AuditOutcome) domain.AuditLogEntry {
	location := op.Location
	if location == "" {
		location = op.Actor.Location
	}
	return domain.AuditLogEntry{
		ID:            NewID(),
		TransactionID: txID,
		Action:        op.Action,
		ActorID:       op.Actor.UID,
		ActorName:     op.Actor.DisplayName,
		ActorRole:     string(op.Actor.Role),
		Location:      location,
		ItemCode:      op.ItemCode,
		Outcome:       outcome,
		Attempts:      attempts,
	}
}
