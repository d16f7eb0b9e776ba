package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/harborlink/marina/internal/model"
	platformHttp "github.com/harborlink/marina/internal/platform/http"
	"github.com/harborlink/marina/internal/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// CreateBooking POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResourceID string    `json:"resourceId"`
		HolderID   string    `json:"holderId"`
		StartTime  time.Time `json:"startTime"`
		EndTime    time.Time `json:"endTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		platformHttp.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.svc.Book(r.Context(), services.BookRequest{
		ResourceID: req.ResourceID,
		HolderID:   req.HolderID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}
	platformHttp.WriteJSON(w, http.StatusCreated, out)
}

// CancelBooking DELETE /api/bookings/{reservationId}?holderId=
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	holderID := r.URL.Query().Get("holderId")
	if holderID == "" {
		platformHttp.WriteBadRequest(w, "holderId query parameter is required")
		return
	}

	out, err := h.svc.Cancel(r.Context(), vars["reservationId"], holderID)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	platformHttp.WriteJSON(w, http.StatusOK, out)
}

// writeBookingError maps the service error taxonomy onto status codes.
// Conflicts are a normal outcome and carry the blocking reservations.
func writeBookingError(w http.ResponseWriter, err error) {
	var conflict *model.ConflictError
	switch {
	case errors.As(err, &conflict):
		platformHttp.WriteConflict(w, err.Error(), conflict.Conflicts)
	case errors.Is(err, model.ErrValidation):
		platformHttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		platformHttp.WriteNotFound(w, err.Error())
	default:
		platformHttp.WriteInternalError(w, err.Error())
	}
}
