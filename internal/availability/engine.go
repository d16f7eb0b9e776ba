// Package availability decides whether a candidate interval can be
// admitted against a resource's confirmed schedule. The engine performs
// no writes; its verdict is a fast path only and the store re-enforces
// the invariant at commit time.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlink/marina/internal/model"
	"github.com/harborlink/marina/internal/store"
)

// Decision is the outcome of an admission check. A rejected decision
// carries the blocking reservations for display.
type Decision struct {
	Admitted  bool                `json:"admitted"`
	Conflicts []model.Reservation `json:"conflicts,omitempty"`
}

// SlotStatus reports one named slot of a partitioned day.
type SlotStatus struct {
	Available bool   `json:"available"`
	HeldBy    string `json:"heldBy,omitempty"`
}

// Slot names a window of the day as offsets from local midnight. A slot
// whose End does not exceed Start crosses midnight and resolves its end
// against the following calendar day.
type Slot struct {
	Name  string
	Start time.Duration
	End   time.Duration
}

// DefaultSlots is the standard partition of a charter day.
var DefaultSlots = []Slot{
	{Name: "morning", Start: 9 * time.Hour, End: 13 * time.Hour},
	{Name: "afternoon", Start: 13 * time.Hour, End: 17 * time.Hour},
	{Name: "evening", Start: 17 * time.Hour, End: 21 * time.Hour},
	{Name: "night", Start: 21 * time.Hour, End: 1 * time.Hour},
}

type Engine struct {
	store    store.Store
	ceilings map[string]float64
	lowest   float64
}

// New constructs an engine. ceilings maps member tier to the maximum
// resource size (meters) that tier may book; tiers with no entry use the
// lowest configured ceiling.
func New(st store.Store, ceilings map[string]float64) *Engine {
	lowest := 0.0
	first := true
	for _, v := range ceilings {
		if first || v < lowest {
			lowest = v
			first = false
		}
	}
	return &Engine{store: st, ceilings: ceilings, lowest: lowest}
}

// Check tests the half-open interval [start, end) against the resource's
// confirmed reservations. Zero-duration and inverted intervals are
// rejected before any overlap testing.
func (e *Engine) Check(ctx context.Context, resourceID string, start, end time.Time) (Decision, error) {
	if !end.After(start) {
		return Decision{}, fmt.Errorf("%w: interval end must be after start", model.ErrValidation)
	}

	confirmed, err := e.store.Reservations().ListConfirmed(ctx, resourceID)
	if err != nil {
		return Decision{}, fmt.Errorf("list confirmed reservations: %w", err)
	}

	var conflicts []model.Reservation
	for _, r := range confirmed {
		if r.Overlaps(start, end) {
			conflicts = append(conflicts, r)
		}
	}
	return Decision{Admitted: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// PartitionDay reports per-slot availability for date. Unavailable slots
// carry the display name of the conflicting holder.
func (e *Engine) PartitionDay(ctx context.Context, resourceID string, date time.Time, slots []Slot) (map[string]SlotStatus, error) {
	if len(slots) == 0 {
		slots = DefaultSlots
	}

	confirmed, err := e.store.Reservations().ListConfirmed(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed reservations: %w", err)
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	out := make(map[string]SlotStatus, len(slots))
	for _, slot := range slots {
		start := midnight.Add(slot.Start)
		endOffset := slot.End
		if endOffset <= slot.Start {
			// The slot spills past midnight into the next calendar day.
			endOffset += 24 * time.Hour
		}
		end := midnight.Add(endOffset)

		status := SlotStatus{Available: true}
		for _, r := range confirmed {
			if r.Overlaps(start, end) {
				status.Available = false
				status.HeldBy = e.holderLabel(ctx, r.HolderID)
				break
			}
		}
		out[slot.Name] = status
	}
	return out, nil
}

// WithinTierCeiling reports whether a capacity-restricted tier may book
// a resource of the given size.
func (e *Engine) WithinTierCeiling(tier string, sizeMeters float64) bool {
	ceiling, ok := e.ceilings[tier]
	if !ok {
		ceiling = e.lowest
	}
	return sizeMeters <= ceiling
}

// holderLabel resolves a display name, falling back to the raw id when
// the actor lookup fails; labels are cosmetic and must not fail a read.
func (e *Engine) holderLabel(ctx context.Context, holderID string) string {
	actor, err := e.store.Actors().Get(ctx, holderID)
	if err != nil {
		return holderID
	}
	return actor.DisplayName
}
