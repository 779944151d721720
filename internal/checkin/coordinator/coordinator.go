// Package coordinator creates the rows concurrent check-ins share: one
// occurrence per group, schedule and day, and one security code per attendance.
// The store's unique indexes decide every race; retries only turn a lost race
// into a success once the winner's row is visible.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"checkin/internal/checkin/metrics"
	"checkin/internal/checkin/models"
	"checkin/internal/platform/config"
	"checkin/pkg/platform/retry"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
)

// ErrConcurrencyExhausted means the retry budget ran out before a row could be
// created or read back. It indicates extreme contention or a schema defect.
var ErrConcurrencyExhausted = errors.New("concurrency retry budget exhausted")

// errReadBackMiss marks a conflict whose winning row was not yet visible.
var errReadBackMiss = errors.New("occurrence conflict but read-back found no row")

// errCodeCollision marks a drawn code already issued for the day.
var errCodeCollision = errors.New("security code already issued for the day")

const (
	DefaultOccurrenceAttempts = 5
	DefaultCodeAttempts       = 10
	DefaultBackoffBase        = 10 * time.Millisecond
)

// Store is the persistence the coordinator relies on. Inserts are single
// statements outside any caller transaction and return sentinel.ErrConflict
// when a unique index rejects the row.
type Store interface {
	InsertOccurrence(ctx context.Context, occ *models.Occurrence) (*models.Occurrence, error)
	FindOccurrence(ctx context.Context, key models.OccurrenceKey) (*models.Occurrence, error)
	InsertCode(ctx context.Context, code *models.AttendanceCode) (*models.AttendanceCode, error)
}

// Coordinator owns creation of occurrence and attendance code rows.
type Coordinator struct {
	store              Store
	codes              CodeGenerator
	occurrenceAttempts int
	codeAttempts       int
	backoff            func(int) time.Duration
	sleep              retry.SleepFunc
	logger             *slog.Logger
	metrics            *metrics.Metrics
	tracer             trace.Tracer
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithCodeGenerator replaces the crypto/rand generator.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(c *Coordinator) {
		c.codes = g
	}
}

// WithConfig applies attempt budgets and backoff from configuration.
func WithConfig(cfg config.Checkin) Option {
	return func(c *Coordinator) {
		if cfg.OccurrenceAttempts > 0 {
			c.occurrenceAttempts = cfg.OccurrenceAttempts
		}
		if cfg.CodeAttempts > 0 {
			c.codeAttempts = cfg.CodeAttempts
		}
		if cfg.BackoffBase > 0 {
			c.backoff = retry.Exponential(cfg.BackoffBase)
		}
	}
}

// WithSleep replaces the timer used between attempts.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(c *Coordinator) {
		c.sleep = sleep
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = tracer
	}
}

// New creates a Coordinator. Without WithCodeGenerator it draws 4-symbol codes
// from config.DefaultCodeAlphabet.
func New(store Store, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}

	c := &Coordinator{
		store:              store,
		occurrenceAttempts: DefaultOccurrenceAttempts,
		codeAttempts:       DefaultCodeAttempts,
		backoff:            retry.Exponential(DefaultBackoffBase),
		logger:             slog.Default(),
		tracer:             otel.Tracer("checkin/coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.codes == nil {
		gen, err := NewRandomCodeGenerator(config.DefaultCodeAlphabet, 4)
		if err != nil {
			return nil, err
		}
		c.codes = gen
	}
	return c, nil
}

// GetOrCreateOccurrence returns the single occurrence for key, creating it if
// needed. Each attempt inserts at most once; a conflict is resolved by reading
// the winner's row, and only a read-back miss waits and tries again.
func (c *Coordinator) GetOrCreateOccurrence(ctx context.Context, key models.OccurrenceKey) (*models.Occurrence, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.GetOrCreateOccurrence", trace.WithAttributes(
		attribute.Int64("group_id", key.GroupID),
		attribute.String("occurrence_date", key.Date.String()),
	))
	defer span.End()

	created := false
	used := 0
	policy := retry.Policy{
		MaxAttempts: c.occurrenceAttempts,
		Backoff:     c.backoff,
		Retryable:   func(err error) bool { return errors.Is(err, errReadBackMiss) },
		Sleep:       c.sleep,
	}

	occ, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) (*models.Occurrence, error) {
		used = attempt + 1
		candidate := models.NewOccurrence(key, requestcontext.Now(ctx))
		occ, err := c.store.InsertOccurrence(ctx, candidate)
		if err == nil {
			created = true
			return occ, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, fmt.Errorf("insert occurrence: %w", err)
		}

		c.metrics.IncConflict(metrics.ResourceOccurrence)
		existing, err := c.store.FindOccurrence(ctx, key)
		if err == nil {
			return existing, nil
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			c.logger.DebugContext(ctx, "occurrence read-back miss",
				"group_id", key.GroupID,
				"occurrence_date", key.Date.String(),
				"attempt", attempt,
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, errReadBackMiss
		}
		return nil, fmt.Errorf("read back occurrence: %w", err)
	})
	span.SetAttributes(attribute.Int("attempts", used))

	if err != nil {
		err = c.exhausted(ctx, err, metrics.ResourceOccurrence, used,
			"group_id", key.GroupID,
			"occurrence_date", key.Date.String(),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "get or create occurrence failed")
		return nil, err
	}

	span.SetAttributes(attribute.Bool("created", created), attribute.Int64("occurrence_id", occ.ID))
	if created {
		c.metrics.ObserveCreated(metrics.ResourceOccurrence, used)
	} else {
		c.metrics.ObserveResolved(metrics.ResourceOccurrence, used)
	}
	return occ, nil
}

// GenerateSecurityCode issues a code unique within issueDate. A collision
// draws a new code after the backoff.
func (c *Coordinator) GenerateSecurityCode(ctx context.Context, issueDate models.Date) (*models.AttendanceCode, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.GenerateSecurityCode", trace.WithAttributes(
		attribute.String("issue_date", issueDate.String()),
	))
	defer span.End()

	used := 0
	policy := retry.Policy{
		MaxAttempts: c.codeAttempts,
		Backoff:     c.backoff,
		Retryable:   func(err error) bool { return errors.Is(err, errCodeCollision) },
		Sleep:       c.sleep,
	}

	code, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) (*models.AttendanceCode, error) {
		used = attempt + 1
		value, err := c.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		code, err := c.store.InsertCode(ctx, &models.AttendanceCode{
			IssueDate: issueDate,
			Code:      value,
			IssuedAt:  requestcontext.Now(ctx),
		})
		if err == nil {
			return code, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			c.metrics.IncConflict(metrics.ResourceCode)
			return nil, errCodeCollision
		}
		return nil, fmt.Errorf("insert code: %w", err)
	})
	span.SetAttributes(attribute.Int("attempts", used))

	if err != nil {
		err = c.exhausted(ctx, err, metrics.ResourceCode, used, "issue_date", issueDate.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate security code failed")
		return nil, err
	}

	c.metrics.ObserveCreated(metrics.ResourceCode, used)
	return code, nil
}

// exhausted converts a spent retry budget into ErrConcurrencyExhausted and
// logs it at ERROR. Other errors pass through.
func (c *Coordinator) exhausted(ctx context.Context, err error, resource string, attempts int, attrs ...any) error {
	if !errors.Is(err, retry.ErrExhausted) {
		return err
	}
	c.metrics.IncExhausted(resource)
	args := append([]any{
		"resource", resource,
		"attempts", attempts,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	c.logger.ErrorContext(ctx, "concurrency retry budget exhausted", args...)
	return fmt.Errorf("%w: %s after %d attempts: %w", ErrConcurrencyExhausted, resource, attempts, err)
}
