// Package memstore provides a mutex-guarded in-memory store used in
// tests and when no postgres DSN is configured.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborlink/marina/internal/model"
	"github.com/harborlink/marina/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
	actors       map[string]model.Actor
	resources    map[string]model.Resource
}

func New() *Store {
	return &Store{
		reservations: make(map[string]model.Reservation),
		actors:       make(map[string]model.Actor),
		resources:    make(map[string]model.Resource),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Reservations() store.Reservations { return (*reservations)(s) }
func (s *Store) Actors() store.Actors             { return (*actors)(s) }
func (s *Store) Resources() store.Resources       { return (*resources)(s) }

func (s *Store) HealthPing(ctx context.Context) error { return nil }

// SeedActor inserts an actor, replacing any previous entry.
func (s *Store) SeedActor(a model.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[a.ActorID] = a
}

// SeedResource inserts a resource, replacing any previous entry.
func (s *Store) SeedResource(r model.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ResourceID] = r
}

// --- Reservations ---

type reservations Store

func (r *reservations) ListConfirmed(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Reservation
	for _, res := range r.reservations {
		if res.ResourceID == resourceID && res.Status == model.StatusConfirmed {
			out = append(out, res)
		}
	}
	return out, nil
}

// Create re-checks the overlap invariant under the write lock, mirroring
// what the postgres exclusion constraint does at commit time.
func (r *reservations) Create(ctx context.Context, in *model.Reservation) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.Status == model.StatusConfirmed {
		var conflicts []model.Reservation
		for _, existing := range r.reservations {
			if existing.ResourceID == in.ResourceID &&
				existing.Status == model.StatusConfirmed &&
				existing.Overlaps(in.StartTime, in.EndTime) {
				conflicts = append(conflicts, existing)
			}
		}
		if len(conflicts) > 0 {
			return nil, &model.ConflictError{Conflicts: conflicts}
		}
	}

	out := *in
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	r.reservations[out.ID] = out
	return &out, nil
}

func (r *reservations) Get(ctx context.Context, reservationID string) (*model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[reservationID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &res, nil
}

func (r *reservations) UpdateStatus(ctx context.Context, reservationID string, status model.ReservationStatus) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[reservationID]
	if !ok {
		return nil, model.ErrNotFound
	}
	res.Status = status
	r.reservations[reservationID] = res
	return &res, nil
}

// --- Actors ---

type actors Store

func (a *actors) Get(ctx context.Context, actorID string) (*model.Actor, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	actor, ok := a.actors[actorID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &actor, nil
}

// --- Resources ---

type resources Store

func (r *resources) Get(ctx context.Context, resourceID string) (*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[resourceID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &res, nil
}
