// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them. Keeping this package free
// of net/http lets services and workers import it without the transport.
//
// Usage in services (read values):
//
//	principal := requestcontext.Principal(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithPrincipal(ctx, requestcontext.NewPrincipal("kiosk-1").WithLocations(3))
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	principalKey   struct{}
	deviceKey      struct{}
	clientIPKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// -----------------------------------------------------------------------------
// Caller
// -----------------------------------------------------------------------------

// CallerPrincipal is the authorization context of the current caller: who they
// are and which people and locations they may act on. A nil principal is an
// unauthenticated caller.
type CallerPrincipal struct {
	CallerID     string
	AllPersons   bool
	AllLocations bool
	persons      map[int64]struct{}
	locations    map[int64]struct{}
}

// NewPrincipal returns a principal with no grants.
func NewPrincipal(callerID string) *CallerPrincipal {
	return &CallerPrincipal{
		CallerID:  callerID,
		persons:   map[int64]struct{}{},
		locations: map[int64]struct{}{},
	}
}

// WithPersons grants access to the given person ids.
func (p *CallerPrincipal) WithPersons(ids ...int64) *CallerPrincipal {
	for _, id := range ids {
		p.persons[id] = struct{}{}
	}
	return p
}

// WithLocations grants access to the given location ids.
func (p *CallerPrincipal) WithLocations(ids ...int64) *CallerPrincipal {
	for _, id := range ids {
		p.locations[id] = struct{}{}
	}
	return p
}

// IsAuthenticated reports whether a caller identity is present.
func (p *CallerPrincipal) IsAuthenticated() bool {
	return p != nil && p.CallerID != ""
}

// ID returns the caller id, or "" for an unauthenticated caller.
func (p *CallerPrincipal) ID() string {
	if p == nil {
		return ""
	}
	return p.CallerID
}

// CanAccessPerson reports whether the caller may act on personID.
func (p *CallerPrincipal) CanAccessPerson(personID int64) bool {
	if !p.IsAuthenticated() {
		return false
	}
	if p.AllPersons {
		return true
	}
	_, ok := p.persons[personID]
	return ok
}

// CanAccessLocation reports whether the caller may act at locationID.
func (p *CallerPrincipal) CanAccessLocation(locationID int64) bool {
	if !p.IsAuthenticated() {
		return false
	}
	if p.AllLocations {
		return true
	}
	_, ok := p.locations[locationID]
	return ok
}

// Principal retrieves the caller principal from the context, or nil.
func Principal(ctx context.Context) *CallerPrincipal {
	if p, ok := ctx.Value(principalKey{}).(*CallerPrincipal); ok {
		return p
	}
	return nil
}

// WithPrincipal injects a caller principal into the context.
func WithPrincipal(ctx context.Context, p *CallerPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// -----------------------------------------------------------------------------
// Device and client metadata
// -----------------------------------------------------------------------------

// Device describes the kiosk a request came from.
type Device struct {
	ID          string
	Description string
}

// DeviceInfo retrieves the kiosk device from the context.
func DeviceInfo(ctx context.Context) Device {
	if d, ok := ctx.Value(deviceKey{}).(Device); ok {
		return d
	}
	return Device{}
}

// WithDevice injects kiosk device metadata into a context.
func WithDevice(ctx context.Context, d Device) context.Context {
	return context.WithValue(ctx, deviceKey{}, d)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the client IP into a context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
