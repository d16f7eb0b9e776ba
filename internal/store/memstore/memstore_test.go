package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlink/marina/internal/model"
)

func day(h, m int) time.Time {
	return time.Date(2025, 6, 14, h, m, 0, 0, time.UTC)
}

func TestCreateEnforcesNoOverlap(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-1",
		StartTime: day(9, 0), EndTime: day(13, 0),
		Status: model.StatusConfirmed,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-2",
		StartTime: day(12, 0), EndTime: day(14, 0),
		Status: model.StatusConfirmed,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConflict))

	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, first.ID, conflict.Conflicts[0].ID)
}

func TestCreateAllowsBackToBack(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-1",
		StartTime: day(9, 0), EndTime: day(13, 0),
		Status: model.StatusConfirmed,
	})
	require.NoError(t, err)

	// Half-open boundary touch is not a conflict.
	_, err = s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-2",
		StartTime: day(13, 0), EndTime: day(17, 0),
		Status: model.StatusConfirmed,
	})
	require.NoError(t, err)

	confirmed, err := s.Reservations().ListConfirmed(ctx, "yacht-1")
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)
}

func TestCreateIgnoresOtherResourcesAndStatuses(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-1",
		StartTime: day(9, 0), EndTime: day(13, 0),
		Status: model.StatusCancelled,
	})
	require.NoError(t, err)

	// Cancelled rows do not block, and other resources never do.
	_, err = s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-2",
		StartTime: day(10, 0), EndTime: day(12, 0),
		Status: model.StatusConfirmed,
	})
	require.NoError(t, err)

	_, err = s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-2", HolderID: "m-3",
		StartTime: day(10, 0), EndTime: day(12, 0),
		Status: model.StatusConfirmed,
	})
	require.NoError(t, err)
}

func TestUpdateStatusAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Reservations().Create(ctx, &model.Reservation{
		ResourceID: "yacht-1", HolderID: "m-1",
		StartTime: day(9, 0), EndTime: day(13, 0),
		Status: model.StatusConfirmed,
	})
	require.NoError(t, err)

	updated, err := s.Reservations().UpdateStatus(ctx, created.ID, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)

	got, err := s.Reservations().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)

	_, err = s.Reservations().Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.Actors().Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSeedLookups(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SeedActor(model.Actor{ActorID: "o-1", DisplayName: "Pat Keel", Role: model.RoleOwner})
	s.SeedResource(model.Resource{ResourceID: "yacht-1", Name: "Sea Drift", SizeMeters: 14, OwnerID: "o-1"})

	actor, err := s.Actors().Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Pat Keel", actor.DisplayName)

	res, err := s.Resources().Get(ctx, "yacht-1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", res.OwnerID)
}
