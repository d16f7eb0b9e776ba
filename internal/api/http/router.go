package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/harborlink/marina/internal/api/recovery"
	"github.com/harborlink/marina/internal/services"
)

// NewRouter wires the booking, availability, presence, and health
// surfaces.
func NewRouter(svc *services.BookingService, presence http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)

	bookings := NewBookingHandler(svc)
	r.HandleFunc("/api/bookings", bookings.CreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/api/bookings/{reservationId}", bookings.CancelBooking).Methods(http.MethodDelete)

	avail := NewAvailabilityHandler(svc)
	r.HandleFunc("/api/resources/{resourceId}/bookings", avail.ListResourceBookings).Methods(http.MethodGet)
	r.HandleFunc("/api/resources/{resourceId}/availability", avail.DayAvailability).Methods(http.MethodGet)
	r.HandleFunc("/api/resources/{resourceId}/availability/check", avail.CheckAvailability).Methods(http.MethodGet)

	r.Handle("/ws", presence).Methods(http.MethodGet)

	health := NewHealthHandler()
	r.HandleFunc("/api/health", health.CheckHealth).Methods(http.MethodGet)

	return r
}
