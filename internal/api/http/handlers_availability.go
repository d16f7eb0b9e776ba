package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/harborlink/marina/internal/model"
	platformHttp "github.com/harborlink/marina/internal/platform/http"
	"github.com/harborlink/marina/internal/services"
)

type AvailabilityHandler struct {
	svc *services.BookingService
}

func NewAvailabilityHandler(svc *services.BookingService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// ListResourceBookings GET /api/resources/{resourceId}/bookings
func (h *AvailabilityHandler) ListResourceBookings(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.ListForResource(r.Context(), v["resourceId"])
	if err != nil {
		platformHttp.WriteInternalError(w, err.Error())
		return
	}
	if out == nil {
		out = []model.Reservation{}
	}
	platformHttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"bookings": out, "count": len(out)})
}

// DayAvailability GET /api/resources/{resourceId}/availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) DayAvailability(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		platformHttp.WriteBadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	out, err := h.svc.DayAvailability(r.Context(), v["resourceId"], date)
	if err != nil {
		platformHttp.WriteInternalError(w, err.Error())
		return
	}
	platformHttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"date": date.Format("2006-01-02"), "slots": out})
}

// CheckAvailability GET /api/resources/{resourceId}/availability/check?start=&end=
// start and end are RFC3339 timestamps.
func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		platformHttp.WriteBadRequest(w, "start must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		platformHttp.WriteBadRequest(w, "end must be RFC3339")
		return
	}

	decision, err := h.svc.CheckAvailability(r.Context(), v["resourceId"], start, end)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	platformHttp.WriteJSON(w, http.StatusOK, decision)
}
