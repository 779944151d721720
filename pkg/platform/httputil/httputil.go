// Package httputil writes the kiosk API's JSON envelopes.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "checkin/pkg/domain-errors"
)

// Kiosk-visible error categories. Kiosks branch on these, never on messages.
const (
	CategoryNotAuthorized = "not_authorized"
	CategoryBusy          = "busy_try_again"
	CategoryBadRequest    = "bad_request"
	CategoryNotFound      = "not_found"
	CategoryInternal      = "internal_error"
)

// maxBodyBytes caps kiosk request bodies; a family batch is a few kilobytes.
const maxBodyBytes = 64 << 10

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error onto a category and status. Internal errors
// never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	status, resp := NewErrorResponse(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, status, resp)
}

// NewErrorResponse is the status and envelope WriteError would write for err.
// Batch endpoints use it to report per-item failures.
func NewErrorResponse(err error) (int, ErrorResponse) {
	status, category := classify(dErrors.CodeOf(err))
	resp := ErrorResponse{Error: category}
	if category != CategoryInternal {
		resp.Description = dErrors.MessageOf(err)
	}
	return status, resp
}

func classify(code dErrors.Code) (int, string) {
	switch code {
	case dErrors.CodeUnauthorized, dErrors.CodeForbidden:
		// Both map to one status so responses do not reveal which check failed.
		return http.StatusForbidden, CategoryNotAuthorized
	case dErrors.CodeBusy, dErrors.CodeTimeout:
		return http.StatusServiceUnavailable, CategoryBusy
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest, CategoryBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict, CategoryBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound, CategoryNotFound
	default:
		return http.StatusInternalServerError, CategoryInternal
	}
}

// DecodeJSON decodes a bounded JSON body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is empty")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}

// DecodeAndPrepare decodes the body into a *T and validates it. On failure it
// writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validate() error
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))
	if err := DecodeJSON(r, req); err != nil {
		logger.WarnContext(ctx, "failed to decode request",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
