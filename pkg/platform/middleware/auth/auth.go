package auth

import (
	"log/slog"
	"net/http"
	"strings"

	request "checkin/pkg/platform/middleware/request"
	"checkin/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its grants.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims are the grants a validated kiosk token carries.
type Claims struct {
	Subject      string
	PersonIDs    []int64
	LocationIDs  []int64
	AllPersons   bool
	AllLocations bool
}

// Principal converts validated claims into the caller principal services consult.
func (c *Claims) Principal() *requestcontext.CallerPrincipal {
	p := requestcontext.NewPrincipal(c.Subject).
		WithPersons(c.PersonIDs...).
		WithLocations(c.LocationIDs...)
	p.AllPersons = c.AllPersons
	p.AllLocations = c.AllLocations
	return p
}

// Authenticate attaches a caller principal for a valid bearer token. Requests
// without a usable token continue anonymously; the authorization gate in each
// service rejects them with the same error as any other authorization failure.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
