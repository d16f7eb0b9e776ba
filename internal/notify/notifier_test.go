package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlink/marina/internal/model"
)

type fakeLive struct {
	online    map[string]bool
	sent      []model.NotificationEvent
	broadcast []model.NotificationEvent
}

func (f *fakeLive) Send(actorID string, e model.NotificationEvent) bool {
	if !f.online[actorID] {
		return false
	}
	f.sent = append(f.sent, e)
	return true
}

func (f *fakeLive) Broadcast(e model.NotificationEvent, roles ...model.Role) int {
	f.broadcast = append(f.broadcast, e)
	return 2
}

type recordingFallback struct {
	alerts []string
	ok     bool
}

func (f *recordingFallback) SendAlert(_ context.Context, actorID, message string) bool {
	f.alerts = append(f.alerts, actorID+": "+message)
	return f.ok
}

var (
	owner    = model.Actor{ActorID: "o-1", DisplayName: "Pat Keel", Role: model.RoleOwner}
	holder   = model.Actor{ActorID: "m-1", DisplayName: "Alex Mainsail", Role: model.RoleMember}
	provider = model.Actor{ActorID: "p-1", DisplayName: "Dock Services", Role: model.RoleProvider}
	yacht    = model.Resource{ResourceID: "yacht-1", Name: "Sea Drift", SizeMeters: 14, OwnerID: "o-1"}
)

func reservation() model.Reservation {
	return model.Reservation{
		ID: "r-1", ResourceID: "yacht-1", HolderID: "m-1",
		StartTime: time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 14, 13, 0, 0, 0, time.UTC),
		Status:    model.StatusConfirmed,
	}
}

func TestReservationCreatedDeliversLiveToOwner(t *testing.T) {
	live := &fakeLive{online: map[string]bool{"o-1": true}}
	fb := &recordingFallback{ok: true}
	n := New(live, fb, zerolog.Nop())

	n.ReservationCreated(context.Background(), reservation(), yacht, holder, owner)

	require.Len(t, live.sent, 1)
	assert.Equal(t, model.EventReservationCreated, live.sent[0].Kind)
	assert.Equal(t, "o-1", live.sent[0].TargetActorID)
	assert.Equal(t, model.PriorityHigh, live.sent[0].Priority)
	assert.Equal(t, "yacht-1", live.sent[0].Payload["resourceId"])
	assert.Empty(t, fb.alerts, "fallback must not run when live delivery succeeds")

	// Admin fan-out happens regardless of owner delivery.
	require.Len(t, live.broadcast, 1)
	assert.Equal(t, model.PriorityMedium, live.broadcast[0].Priority)
}

func TestReservationCreatedFallsBackWhenOwnerOffline(t *testing.T) {
	live := &fakeLive{online: map[string]bool{}}
	fb := &recordingFallback{ok: true}
	n := New(live, fb, zerolog.Nop())

	n.ReservationCreated(context.Background(), reservation(), yacht, holder, owner)

	assert.Empty(t, live.sent)
	require.Len(t, fb.alerts, 1)
	assert.Contains(t, fb.alerts[0], "o-1")
	assert.Contains(t, fb.alerts[0], "Sea Drift")
}

func TestServiceBookedDropsForbiddenKind(t *testing.T) {
	live := &fakeLive{online: map[string]bool{"o-1": true}}
	fb := &recordingFallback{ok: true}
	n := New(live, fb, zerolog.Nop())

	// Owners are not permitted service-booked events; nothing is sent
	// and the fallback never runs.
	n.ServiceBooked(context.Background(), "svc-1", holder, owner, time.Now())
	assert.Empty(t, live.sent)
	assert.Empty(t, fb.alerts)

	n.ServiceBooked(context.Background(), "svc-1", holder, provider, time.Now())
	assert.Empty(t, live.sent, "provider offline, live send fails")
	require.Len(t, fb.alerts, 1, "high priority falls back")
}

func TestEventRegistrationBroadcastsToAdmins(t *testing.T) {
	live := &fakeLive{online: map[string]bool{}}
	n := New(live, &recordingFallback{}, zerolog.Nop())

	n.EventRegistrationCreated(context.Background(), "regatta-25", holder)

	require.Len(t, live.broadcast, 1)
	assert.Equal(t, model.EventRegistrationCreated, live.broadcast[0].Kind)
}

func TestAllowedEvent(t *testing.T) {
	assert.True(t, AllowedEvent(model.RoleOwner, model.EventReservationCreated))
	assert.False(t, AllowedEvent(model.RoleOwner, model.EventServiceBooked))
	assert.True(t, AllowedEvent(model.RoleProvider, model.EventServiceBooked))
	assert.False(t, AllowedEvent(model.RoleMember, model.EventMaintenanceAlert))
	// Welcome is universal, including unknown roles.
	assert.True(t, AllowedEvent(model.Role("visitor"), model.EventWelcome))
	assert.False(t, AllowedEvent(model.Role("visitor"), model.EventReservationCreated))
}

func TestCacheScopes(t *testing.T) {
	assert.Contains(t, CacheScopes(model.RoleAdmin), "analytics:")
	assert.NotContains(t, CacheScopes(model.RoleMember), "analytics:")
	assert.Empty(t, CacheScopes(model.Role("visitor")))
}
