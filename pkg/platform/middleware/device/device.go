// Package device identifies the kiosk a request came from.
package device

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"checkin/pkg/requestcontext"
)

// HeaderKioskID names the kiosk in a request. Kiosks set it from their local configuration.
const HeaderKioskID = "X-Kiosk-ID"

// Middleware attaches the kiosk device to the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := FromRequest(r)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithDevice(r.Context(), d)))
	})
}

// FromRequest builds the device from the kiosk id header and the User-Agent.
func FromRequest(r *http.Request) requestcontext.Device {
	id := strings.TrimSpace(r.Header.Get(HeaderKioskID))
	if len(id) > 64 {
		id = id[:64]
	}
	return requestcontext.Device{
		ID:          id,
		Description: Describe(id, r.Header.Get("User-Agent")),
	}
}

// Describe renders a short human readable device label, e.g.
// "kiosk-3 (Chrome on Linux x86_64)". It is stored on attendance rows.
func Describe(kioskID, userAgent string) string {
	label := kioskID
	if label == "" {
		label = "unknown kiosk"
	}
	if userAgent == "" {
		return label
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	platform := ua.OS()
	switch {
	case ua.Bot():
		return fmt.Sprintf("%s (bot)", label)
	case browser != "" && platform != "":
		return fmt.Sprintf("%s (%s on %s)", label, browser, platform)
	case browser != "":
		return fmt.Sprintf("%s (%s)", label, browser)
	default:
		return label
	}
}
