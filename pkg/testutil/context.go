package testutil

import (
	"context"
	"net/http"

	"checkin/pkg/requestcontext"
)

// KioskContext returns a context carrying a principal allowed to act on the
// given persons and locations, a device and a request id, as the middleware
// chain would build it.
func KioskContext(persons, locations []int64) context.Context {
	p := requestcontext.NewPrincipal("kiosk-user").
		WithPersons(persons...).
		WithLocations(locations...)
	ctx := requestcontext.WithPrincipal(context.Background(), p)
	ctx = requestcontext.WithDevice(ctx, requestcontext.Device{ID: "kiosk-1", Description: "kiosk-1 (test)"})
	return requestcontext.WithRequestID(ctx, "req-test")
}

// AdminContext returns a context whose principal may act on every person and location.
func AdminContext() context.Context {
	p := requestcontext.NewPrincipal("admin")
	p.AllPersons = true
	p.AllLocations = true
	return requestcontext.WithPrincipal(context.Background(), p)
}

// WithPrincipal attaches p to the request context, bypassing token validation.
func WithPrincipal(req *http.Request, p *requestcontext.CallerPrincipal) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}
