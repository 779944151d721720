// Package service records kiosk attendance. Every mutating call passes the
// authorization gate first, resolves shared rows through the coordinator and
// persists the attendance inside one transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"checkin/internal/checkin/metrics"
	"checkin/internal/checkin/models"
	"checkin/internal/checkin/store"
	"checkin/internal/checkin/throttle"
	"checkin/internal/platform/config"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/secure"
)

// Operation names, as logged and audited.
const (
	OpRecordAttendance = "record_attendance"
	OpRecordBatch      = "record_attendance_batch"
	OpCheckout         = "checkout"
	OpSearchFamilies   = "search_families"
	OpMarkDidNotOccur  = "mark_did_not_occur"
)

// MaxBatchSize bounds a family check-in.
const MaxBatchSize = 50

// Coordinator creates the occurrence and code rows concurrent check-ins share.
type Coordinator interface {
	GetOrCreateOccurrence(ctx context.Context, key models.OccurrenceKey) (*models.Occurrence, error)
	GenerateSecurityCode(ctx context.Context, issueDate models.Date) (*models.AttendanceCode, error)
}

// Authorizer is the gate every operation passes first.
type Authorizer interface {
	RequireAuthenticated(ctx context.Context, operation string) error
	RequireLocationAccess(ctx context.Context, locationID int64, operation string) error
	RequireCheckinAccess(ctx context.Context, personID, locationID int64, operation string) error
}

// PeopleLoader batches person and family reads.
type PeopleLoader interface {
	LoadPersonsWithPrimaryAlias(ctx context.Context, personIDs []int64) (map[int64]models.PersonWithAlias, error)
	LoadRecentAttendances(ctx context.Context, personIDs []int64, since time.Time) (map[int64][]models.Attendance, error)
	LoadFamilyData(ctx context.Context, familyIDs []int64, since time.Time) (map[int64]models.FamilyData, error)
}

// Store is the attendance persistence and family lookup the service needs.
type Store interface {
	FindOpenAttendance(ctx context.Context, occurrenceID, personAliasID int64) (*models.Attendance, error)
	GetAttendance(ctx context.Context, id int64) (*models.Attendance, error)
	GetCode(ctx context.Context, id int64) (*models.AttendanceCode, error)
	GetOccurrence(ctx context.Context, id int64) (*models.Occurrence, error)
	CheckoutAttendance(ctx context.Context, id int64, endAt time.Time) (*models.Attendance, error)
	MarkDidNotOccur(ctx context.Context, id int64) (*models.Occurrence, error)
	FamilyIDsByPhone(ctx context.Context, digits string) ([]int64, error)
	FamilyIDsBySecurityCode(ctx context.Context, code string, issueDate models.Date) ([]int64, error)
	RunInTx(ctx context.Context, fn func(store.TxStore) error) error
}

// Service is the attendance recorder.
type Service struct {
	store       Store
	coordinator Coordinator
	loader      PeopleLoader
	gate        Authorizer

	logger   *slog.Logger
	auditor  audit.Emitter
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	throttle throttle.Limiter
	busyWork func()
	location *time.Location

	recentThreshold  time.Duration
	batchConcurrency int
	codeLength       int
	codeAlphabet     string
	minPhoneDigits   int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithThrottle limits searches per kiosk. The default is an in-memory limiter.
func WithThrottle(limiter throttle.Limiter) Option {
	return func(s *Service) {
		s.throttle = limiter
	}
}

// WithBusyWork replaces the work a missed search performs.
func WithBusyWork(fn func()) Option {
	return func(s *Service) {
		s.busyWork = fn
	}
}

// WithLocation sets the zone whose calendar decides occurrence and code dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithConfig applies check-in settings.
func WithConfig(cfg config.Checkin) Option {
	return func(s *Service) {
		if cfg.RecentCheckinThreshold > 0 {
			s.recentThreshold = cfg.RecentCheckinThreshold
		}
		if cfg.BatchConcurrency > 0 {
			s.batchConcurrency = cfg.BatchConcurrency
		}
		if cfg.CodeLength > 0 {
			s.codeLength = cfg.CodeLength
		}
		if cfg.CodeAlphabet != "" {
			s.codeAlphabet = cfg.CodeAlphabet
		}
	}
}

// WithSearchConfig applies search settings. It does not replace a limiter set by WithThrottle.
func WithSearchConfig(cfg config.Search) Option {
	return func(s *Service) {
		if cfg.MinPhoneDigits > 0 {
			s.minPhoneDigits = cfg.MinPhoneDigits
		}
		if cfg.BusyWorkIterations > 0 {
			s.busyWork = secure.HashBusyWork(cfg.BusyWorkIterations)
		}
		if s.throttle == nil && cfg.ThrottleLimit > 0 && cfg.ThrottleWindow > 0 {
			s.throttle = throttle.NewMemory(cfg.ThrottleLimit, cfg.ThrottleWindow)
		}
	}
}

// New creates a Service. All four collaborators are required.
func New(st Store, coordinator Coordinator, loader PeopleLoader, gate Authorizer, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if coordinator == nil {
		return nil, errors.New("coordinator is required")
	}
	if loader == nil {
		return nil, errors.New("loader is required")
	}
	if gate == nil {
		return nil, errors.New("authorizer is required")
	}

	defaults := config.Default()
	s := &Service{
		store:            st,
		coordinator:      coordinator,
		loader:           loader,
		gate:             gate,
		logger:           slog.Default(),
		tracer:           otel.Tracer("checkin/service"),
		location:         time.UTC,
		recentThreshold:  defaults.Checkin.RecentCheckinThreshold,
		batchConcurrency: defaults.Checkin.BatchConcurrency,
		codeLength:       defaults.Checkin.CodeLength,
		codeAlphabet:     defaults.Checkin.CodeAlphabet,
		minPhoneDigits:   defaults.Search.MinPhoneDigits,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.throttle == nil {
		s.throttle = throttle.NewMemory(defaults.Search.ThrottleLimit, defaults.Search.ThrottleWindow)
	}
	if s.busyWork == nil {
		s.busyWork = secure.HashBusyWork(defaults.Search.BusyWorkIterations)
	}
	return s, nil
}

// dateOf is the calendar date of t in the service's zone.
func (s *Service) dateOf(t time.Time) models.Date {
	return models.DateOf(t.In(s.location))
}
