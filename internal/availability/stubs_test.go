package availability

import (
	"context"
	"errors"

	"github.com/harborlink/marina/internal/model"
	"github.com/harborlink/marina/internal/store"
)

// failingStore errors on every reservation read.
type failingStore struct{}

func (failingStore) Reservations() store.Reservations { return failingReservations{} }
func (failingStore) Actors() store.Actors             { return failingActors{} }
func (failingStore) Resources() store.Resources       { return failingResources{} }
func (failingStore) HealthPing(context.Context) error { return errors.New("down") }

type failingReservations struct{}

func (failingReservations) ListConfirmed(context.Context, string) ([]model.Reservation, error) {
	return nil, errors.New("store unavailable")
}
func (failingReservations) Create(context.Context, *model.Reservation) (*model.Reservation, error) {
	return nil, errors.New("store unavailable")
}
func (failingReservations) Get(context.Context, string) (*model.Reservation, error) {
	return nil, errors.New("store unavailable")
}
func (failingReservations) UpdateStatus(context.Context, string, model.ReservationStatus) (*model.Reservation, error) {
	return nil, errors.New("store unavailable")
}

type failingActors struct{}

func (failingActors) Get(context.Context, string) (*model.Actor, error) {
	return nil, errors.New("store unavailable")
}

type failingResources struct{}

func (failingResources) Get(context.Context, string) (*model.Resource, error) {
	return nil, errors.New("store unavailable")
}
