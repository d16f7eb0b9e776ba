// Package services orchestrates booking use cases: admission, durable
// persistence, cache invalidation, and notification fan-out, in that
// order.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlink/marina/internal/availability"
	"github.com/harborlink/marina/internal/cache"
	"github.com/harborlink/marina/internal/clock"
	"github.com/harborlink/marina/internal/config"
	"github.com/harborlink/marina/internal/model"
	"github.com/harborlink/marina/internal/notify"
	"github.com/harborlink/marina/internal/store"
)

// BookingService coordinates a write through the availability engine,
// the store, the read cache, and the notifier.
type BookingService struct {
	store    store.Store
	engine   *availability.Engine
	cache    *cache.Cache
	notifier *notify.Notifier
	clock    clock.Clock
	cfg      *config.Config
	log      zerolog.Logger
}

func NewBookingService(st store.Store, engine *availability.Engine, c *cache.Cache, n *notify.Notifier, clk clock.Clock, cfg *config.Config, log zerolog.Logger) *BookingService {
	return &BookingService{store: st, engine: engine, cache: c, notifier: n, clock: clk, cfg: cfg, log: log}
}

// BookRequest is an inbound reservation trigger.
type BookRequest struct {
	ResourceID string    `json:"resourceId"`
	HolderID   string    `json:"holderId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

// Book admits, persists, invalidates, and notifies. The engine verdict
// is advisory; the store's own constraint settles concurrent races, so
// a conflict can still surface from Create.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Reservation, error) {
	if req.ResourceID == "" || req.HolderID == "" {
		return nil, fmt.Errorf("%w: resourceId and holderId are required", model.ErrValidation)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: interval end must be after start", model.ErrValidation)
	}

	holder, err := s.store.Actors().Get(ctx, req.HolderID)
	if err != nil {
		return nil, fmt.Errorf("resolve holder: %w", err)
	}
	resource, err := s.store.Resources().Get(ctx, req.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("resolve resource: %w", err)
	}

	// Members are capacity-restricted; owners, providers and admins
	// book without a size ceiling.
	if holder.Role == model.RoleMember && !s.engine.WithinTierCeiling(holder.MemberTier, resource.SizeMeters) {
		return nil, fmt.Errorf("%w: resource size %.1fm exceeds the %s tier ceiling", model.ErrValidation, resource.SizeMeters, holder.MemberTier)
	}

	decision, err := s.engine.Check(ctx, req.ResourceID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !decision.Admitted {
		return nil, &model.ConflictError{Conflicts: decision.Conflicts}
	}

	created, err := s.store.Reservations().Create(ctx, &model.Reservation{
		ResourceID: req.ResourceID,
		HolderID:   req.HolderID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     model.StatusConfirmed,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFor(req.ResourceID)

	owner, err := s.store.Actors().Get(ctx, resource.OwnerID)
	if err != nil {
		// Notification is best-effort; the booking is already recorded.
		s.log.Warn().Err(err).Str("owner_id", resource.OwnerID).Msg("owner lookup failed, notification skipped")
		return created, nil
	}
	s.notifier.ReservationCreated(ctx, *created, *resource, *holder, *owner)

	return created, nil
}

// Cancel transitions a confirmed reservation to cancelled and informs
// the resource owner.
func (s *BookingService) Cancel(ctx context.Context, reservationID, holderID string) (*model.Reservation, error) {
	res, err := s.store.Reservations().Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.HolderID != holderID {
		return nil, fmt.Errorf("%w: reservation is held by another actor", model.ErrValidation)
	}
	if res.Status != model.StatusConfirmed {
		return nil, fmt.Errorf("%w: only confirmed reservations can be cancelled", model.ErrValidation)
	}

	updated, err := s.store.Reservations().UpdateStatus(ctx, reservationID, model.StatusCancelled)
	if err != nil {
		return nil, err
	}

	s.invalidateFor(res.ResourceID)

	resource, rErr := s.store.Resources().Get(ctx, res.ResourceID)
	holder, hErr := s.store.Actors().Get(ctx, res.HolderID)
	if rErr != nil || hErr != nil {
		s.log.Warn().AnErr("resource_err", rErr).AnErr("holder_err", hErr).Msg("lookup failed, cancellation notification skipped")
		return updated, nil
	}
	owner, err := s.store.Actors().Get(ctx, resource.OwnerID)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", resource.OwnerID).Msg("owner lookup failed, notification skipped")
		return updated, nil
	}
	s.notifier.ReservationCancelled(ctx, *updated, *resource, *holder, *owner)

	return updated, nil
}

// ListForResource returns the confirmed schedule for a resource,
// served read-through from the cache.
func (s *BookingService) ListForResource(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	key := "bookings:resource:" + resourceID
	v, err := s.cache.GetOrCompute(key, s.cfg.BookingsTTL, func() (any, error) {
		return s.store.Reservations().ListConfirmed(ctx, resourceID)
	})
	if err != nil {
		return nil, err
	}
	out, _ := v.([]model.Reservation)
	return out, nil
}

// DayAvailability returns the cached slot partition for one date.
func (s *BookingService) DayAvailability(ctx context.Context, resourceID string, date time.Time) (map[string]availability.SlotStatus, error) {
	key := fmt.Sprintf("resources:%s:availability:%s", resourceID, date.Format("2006-01-02"))
	v, err := s.cache.GetOrCompute(key, s.cfg.ResourcesTTL, func() (any, error) {
		return s.engine.PartitionDay(ctx, resourceID, date, nil)
	})
	if err != nil {
		return nil, err
	}
	out, _ := v.(map[string]availability.SlotStatus)
	return out, nil
}

// CheckAvailability exposes the raw engine decision.
func (s *BookingService) CheckAvailability(ctx context.Context, resourceID string, start, end time.Time) (availability.Decision, error) {
	return s.engine.Check(ctx, resourceID, start, end)
}

// invalidateFor drops every cached read a schedule change could have
// made stale.
func (s *BookingService) invalidateFor(resourceID string) {
	s.cache.Invalidate("bookings:")
	s.cache.Invalidate("analytics:")
	s.cache.Invalidate("resources:" + resourceID + ":")
}
