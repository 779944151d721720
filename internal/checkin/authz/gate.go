// Package authz is the explicit authorization gate every attendance-mutating
// call invokes first. Failures are logged and audited in full; callers only
// ever see the generic message.
package authz

import (
	"context"
	"log/slog"
	"strconv"

	"checkin/internal/checkin/metrics"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/audit"
	"checkin/pkg/requestcontext"
)

// Message is the only text an authorization failure carries.
const Message = "not authorized for this operation"

// Failing checks, as logged.
const (
	checkAuthentication = "authentication"
	checkPerson         = "person_access"
	checkLocation       = "location_access"
)

// Gate checks the caller principal carried on the context. It holds no state.
type Gate struct {
	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(g *Gate) {
		g.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func New(opts ...Option) *Gate {
	g := &Gate{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequireAuthenticated fails with CodeUnauthorized when no caller is present.
func (g *Gate) RequireAuthenticated(ctx context.Context, operation string) error {
	if requestcontext.Principal(ctx).IsAuthenticated() {
		return nil
	}
	g.deny(ctx, operation, checkAuthentication, nil, nil)
	return unauthenticated()
}

// RequirePersonAccess fails with CodeUnauthorized when no caller is present and
// CodeForbidden when the caller may not act on personID.
func (g *Gate) RequirePersonAccess(ctx context.Context, personID int64, operation string) error {
	p := requestcontext.Principal(ctx)
	if !p.IsAuthenticated() {
		g.deny(ctx, operation, checkAuthentication, &personID, nil)
		return unauthenticated()
	}
	if !p.CanAccessPerson(personID) {
		g.deny(ctx, operation, checkPerson, &personID, nil)
		return forbidden()
	}
	return nil
}

// RequireLocationAccess is RequirePersonAccess for locations.
func (g *Gate) RequireLocationAccess(ctx context.Context, locationID int64, operation string) error {
	p := requestcontext.Principal(ctx)
	if !p.IsAuthenticated() {
		g.deny(ctx, operation, checkAuthentication, nil, &locationID)
		return unauthenticated()
	}
	if !p.CanAccessLocation(locationID) {
		g.deny(ctx, operation, checkLocation, nil, &locationID)
		return forbidden()
	}
	return nil
}

// RequireCheckinAccess requires access to both the person and the location.
// The returned error is the same whichever check fails, so a caller cannot
// learn which of the two ids it lacks rights to.
func (g *Gate) RequireCheckinAccess(ctx context.Context, personID, locationID int64, operation string) error {
	p := requestcontext.Principal(ctx)
	var failed string
	switch {
	case !p.IsAuthenticated():
		failed = checkAuthentication
	case !p.CanAccessPerson(personID):
		failed = checkPerson
	case !p.CanAccessLocation(locationID):
		failed = checkLocation
	default:
		return nil
	}
	g.deny(ctx, operation, failed, &personID, &locationID)
	return forbidden()
}

func (g *Gate) deny(ctx context.Context, operation, check string, personID, locationID *int64) {
	g.metrics.IncAuthzDenial(check)

	attrs := []any{
		"reason", check,
		"operation", operation,
	}
	subject := ""
	if personID != nil {
		attrs = append(attrs, "person_id", *personID)
		subject = "person:" + strconv.FormatInt(*personID, 10)
	}
	if locationID != nil {
		attrs = append(attrs, "location_id", *locationID)
		if subject == "" {
			subject = "location:" + strconv.FormatInt(*locationID, 10)
		}
	}
	if subject != "" {
		attrs = append(attrs, "subject", subject)
	}
	audit.Log(ctx, g.logger, g.auditor, slog.LevelWarn, audit.ActionAuthorizationDenied, attrs...)
}

func unauthenticated() error {
	return dErrors.New(dErrors.CodeUnauthorized, Message)
}

func forbidden() error {
	return dErrors.New(dErrors.CodeForbidden, Message)
}

// IsDenied reports whether err is an authorization failure from the gate.
func IsDenied(err error) bool {
	return dErrors.Is(err, dErrors.CodeUnauthorized) || dErrors.Is(err, dErrors.CodeForbidden)
}
