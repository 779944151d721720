package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"checkin/internal/checkin/authz"
	"checkin/internal/checkin/coordinator"
	"checkin/internal/checkin/handler"
	"checkin/internal/checkin/loader"
	checkinmetrics "checkin/internal/checkin/metrics"
	"checkin/internal/checkin/service"
	"checkin/internal/checkin/store"
	"checkin/internal/checkin/throttle"
	"checkin/internal/kiosktoken"
	"checkin/internal/platform/config"
	"checkin/internal/platform/database"
	httpmetrics "checkin/internal/platform/metrics"
	redisclient "checkin/internal/platform/redis"
	"checkin/pkg/platform/audit"
	"checkin/pkg/platform/audit/publishers/security"
	"checkin/pkg/platform/audit/sinks/kafka"
	"checkin/pkg/platform/circuit"
	"checkin/pkg/platform/httputil"
	"checkin/pkg/platform/middleware/admin"
	"checkin/pkg/platform/middleware/auth"
	"checkin/pkg/platform/middleware/device"
	"checkin/pkg/platform/middleware/metadata"
	request "checkin/pkg/platform/middleware/request"
	"checkin/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// app owns the process-wide resources behind the kiosk API.
type app struct {
	router    http.Handler
	db        *database.DB
	redis     *redisclient.Client
	sink      *kafka.Sink
	publisher *security.Publisher
	logger    *slog.Logger
}

// newApp connects every dependency and builds the router. Redis and Kafka are
// optional: without them searches are throttled in memory and audit events
// are only logged.
func newApp(ctx context.Context, cfg config.Config, log *slog.Logger, registry *prometheus.Registry, migrate bool) (_ *app, err error) {
	a := &app{logger: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	loc, err := cfg.Checkin.Location()
	if err != nil {
		return nil, err
	}

	a.db, err = database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if migrate {
		applied, err := database.Migrate(ctx, a.db)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.InfoContext(ctx, "migrations applied", "applied", applied)
	}

	limiter, err := a.searchThrottle(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var emitter audit.Emitter
	if len(cfg.Kafka.Brokers) > 0 {
		a.sink, err = kafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, err
		}
		a.publisher = security.NewPublisher(a.sink,
			security.WithLogger(log),
			security.WithBatchSize(cfg.Kafka.BatchSize),
			security.WithFlushInterval(cfg.Kafka.FlushEvery),
		)
		emitter = a.publisher
	} else {
		log.InfoContext(ctx, "no kafka brokers configured, audit events are logged only")
	}

	m := checkinmetrics.New(registry)
	st := store.NewSQL(a.db)
	coord, err := coordinator.New(st,
		coordinator.WithLogger(log),
		coordinator.WithMetrics(m),
		coordinator.WithConfig(cfg.Checkin),
	)
	if err != nil {
		return nil, err
	}
	people, err := loader.New(st, loader.WithLogger(log))
	if err != nil {
		return nil, err
	}
	gate := authz.New(
		authz.WithLogger(log),
		authz.WithAuditEmitter(emitter),
		authz.WithMetrics(m),
	)
	svc, err := service.New(st, coord, people, gate,
		service.WithLogger(log),
		service.WithAuditEmitter(emitter),
		service.WithMetrics(m),
		service.WithThrottle(limiter),
		service.WithLocation(loc),
		service.WithConfig(cfg.Checkin),
		service.WithSearchConfig(cfg.Search),
	)
	if err != nil {
		return nil, err
	}

	tokens := kiosktoken.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	httpm := httpmetrics.New(registry)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.Timeout(cfg.Server.RequestTimeout))
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(httpm.Middleware)

	r.Get("/healthz", a.handleHealth)
	r.With(admin.RequireAdminToken(cfg.Server.MetricsToken, log)).
		Handle("/metrics", httpmetrics.Handler(registry))

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.Authenticate(tokens, log))
		handler.New(svc, log).Register(r)
	})

	a.router = r
	return a, nil
}

// searchThrottle prefers Redis so every replica shares one budget per kiosk,
// and falls back to in-process counters while Redis is unreachable.
func (a *app) searchThrottle(ctx context.Context, cfg config.Config) (throttle.Limiter, error) {
	memory := throttle.NewMemory(cfg.Search.ThrottleLimit, cfg.Search.ThrottleWindow)

	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.logger.InfoContext(ctx, "no redis configured, search throttle is in-memory")
		return memory, nil
	}
	a.redis = client

	primary := throttle.NewRedis(client, cfg.Search.ThrottleLimit, cfg.Search.ThrottleWindow)
	return throttle.NewFallback(primary, memory, circuit.New("search-throttle"), a.logger)
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Pending int               `json:"pending_audit_events,omitempty"`
	Dropped int64             `json:"dropped_audit_events,omitempty"`
}

// handleHealth fails only when the database is down. Redis and Kafka
// problems degrade searches and auditing but check-ins still work.
func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{"database": "ok"}}
	status := http.StatusOK

	if err := a.db.Health(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if a.redis != nil {
		resp.Checks["redis"] = "ok"
		if err := a.redis.Health(ctx); err != nil {
			resp.Checks["redis"] = err.Error()
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}
	if a.sink != nil {
		resp.Checks["kafka"] = "ok"
		if err := a.sink.Ping(ctx); err != nil {
			resp.Checks["kafka"] = err.Error()
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
		resp.Pending = a.publisher.Pending()
		resp.Dropped = a.publisher.Dropped()
	}
	httputil.WriteJSON(w, status, resp)
}

// Close releases connections. It is safe on a partially built app.
func (a *app) Close() {
	if a.sink != nil {
		a.sink.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
