package store

import (
	"context"

	"github.com/harborlink/marina/internal/model"
)

// Store exposes the persistence operations the coordination core
// consumes. Implementations live under internal/store/<driver>/.
type Store interface {
	Reservations() Reservations
	Actors() Actors
	Resources() Resources

	// HealthPing reports whether the backing store is reachable.
	HealthPing(ctx context.Context) error
}

type Reservations interface {
	// ListConfirmed returns every confirmed reservation for a resource.
	ListConfirmed(ctx context.Context, resourceID string) ([]model.Reservation, error)

	// Create persists a reservation. The driver enforces the no-overlap
	// invariant for confirmed rows and returns *model.ConflictError when
	// a concurrent writer got there first; the availability engine's
	// earlier verdict is advisory only.
	Create(ctx context.Context, r *model.Reservation) (*model.Reservation, error)

	Get(ctx context.Context, reservationID string) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, reservationID string, status model.ReservationStatus) (*model.Reservation, error)
}

type Actors interface {
	Get(ctx context.Context, actorID string) (*model.Actor, error)
}

type Resources interface {
	Get(ctx context.Context, resourceID string) (*model.Resource, error)
}
