// Package handler exposes the check-in service as the kiosk JSON API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"checkin/internal/checkin/models"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/httputil"
	"checkin/pkg/requestcontext"
)

// Service defines the check-in operations the kiosk API calls.
type Service interface {
	RecordAttendance(ctx context.Context, req models.RecordAttendanceRequest) (*models.AttendanceResult, error)
	RecordBatch(ctx context.Context, reqs []models.RecordAttendanceRequest) ([]models.BatchItemResult, error)
	Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResult, error)
	SearchFamilies(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
	MarkDidNotOccur(ctx context.Context, occurrenceID, locationID int64) (*models.Occurrence, error)
}

// Handler wires kiosk endpoints to the check-in service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a kiosk handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the kiosk endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/kiosk/search", h.HandleSearch)
	r.Post("/kiosk/checkin", h.HandleCheckin)
	r.Post("/kiosk/checkin/batch", h.HandleBatchCheckin)
	r.Post("/kiosk/checkout", h.HandleCheckout)
	r.Post("/kiosk/occurrences/{occurrenceID}/did-not-occur", h.HandleDidNotOccur)
}

// HandleSearch handles POST /kiosk/search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SearchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SearchFamilies(ctx, models.SearchRequest{Term: req.Term, LocationID: req.LocationID})
	if err != nil {
		h.fail(ctx, w, "search families", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSearchResult(result))
}

// HandleCheckin handles POST /kiosk/checkin. A replayed check-in answers 200
// with already_checked_in set; a new one answers 201.
func (h *Handler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CheckinRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.RecordAttendance(ctx, req.ToModel())
	if err != nil {
		h.fail(ctx, w, "record attendance", err)
		return
	}

	h.logger.InfoContext(ctx, "check-in handled",
		"request_id", requestID,
		"attendance_id", result.Attendance.ID,
		"already_checked_in", result.AlreadyCheckedIn,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	status := http.StatusCreated
	if result.AlreadyCheckedIn {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, fromAttendanceResult(result))
}

// HandleBatchCheckin handles POST /kiosk/checkin/batch. Per-item failures are
// reported in the body; the status is 200 whenever the batch itself was valid.
func (h *Handler) HandleBatchCheckin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchCheckinRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.RecordBatch(ctx, req.ToModel())
	if err != nil {
		h.fail(ctx, w, "record batch", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromBatchResults(results))
}

// HandleCheckout handles POST /kiosk/checkout.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CheckoutRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Checkout(ctx, models.CheckoutRequest{
		AttendanceID: req.AttendanceID,
		SecurityCode: req.SecurityCode,
	})
	if err != nil {
		h.fail(ctx, w, "checkout", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCheckoutResult(result))
}

// HandleDidNotOccur handles POST /kiosk/occurrences/{occurrenceID}/did-not-occur.
func (h *Handler) HandleDidNotOccur(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	occurrenceID, err := strconv.ParseInt(chi.URLParam(r, "occurrenceID"), 10, 64)
	if err != nil || occurrenceID <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid occurrence id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[DidNotOccurRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	occ, err := h.service.MarkDidNotOccur(ctx, occurrenceID, req.LocationID)
	if err != nil {
		h.fail(ctx, w, "mark did not occur", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromOccurrence(occ))
}

// fail logs and writes err. Expected kiosk outcomes log at INFO so only
// internal failures page anyone.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	level := slog.LevelInfo
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error_code", string(dErrors.CodeOf(err)),
		"error", err,
	)
	httputil.WriteError(w, err)
}
