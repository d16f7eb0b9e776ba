// Package notify composes notification events from booking facts and
// routes them: live first, out-of-band for high-value events the live
// channel could not carry. Delivery problems are logged and swallowed;
// they must never block a booking from being recorded.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlink/marina/internal/model"
)

// LiveDeliverer is the presence hub surface the notifier uses.
type LiveDeliverer interface {
	Send(actorID string, event model.NotificationEvent) bool
	Broadcast(event model.NotificationEvent, roles ...model.Role) int
}

type Notifier struct {
	live     LiveDeliverer
	fallback Fallback
	log      zerolog.Logger
}

func New(live LiveDeliverer, fallback Fallback, log zerolog.Logger) *Notifier {
	return &Notifier{live: live, fallback: fallback, log: log}
}

// ReservationCreated informs the resource owner and fans out to admins.
func (n *Notifier) ReservationCreated(ctx context.Context, res model.Reservation, resource model.Resource, holder model.Actor, owner model.Actor) {
	payload := reservationPayload(res, resource)

	n.deliver(ctx, owner, model.NotificationEvent{
		Kind:          model.EventReservationCreated,
		TargetActorID: owner.ActorID,
		Title:         "New booking",
		Message:       fmt.Sprintf("%s booked %s", holder.DisplayName, resource.Name),
		Payload:       payload,
		Priority:      model.PriorityHigh,
		CreatedAt:     time.Now().UTC(),
	})

	count := n.live.Broadcast(model.NotificationEvent{
		Kind:      model.EventReservationCreated,
		Title:     "New booking",
		Message:   fmt.Sprintf("%s booked %s", holder.DisplayName, resource.Name),
		Payload:   payload,
		Priority:  model.PriorityMedium,
		CreatedAt: time.Now().UTC(),
	}, model.RoleAdmin)
	n.log.Debug().Int("admins", count).Str("reservation_id", res.ID).Msg("admin fan-out complete")
}

// ReservationCancelled informs the resource owner.
func (n *Notifier) ReservationCancelled(ctx context.Context, res model.Reservation, resource model.Resource, holder model.Actor, owner model.Actor) {
	n.deliver(ctx, owner, model.NotificationEvent{
		Kind:          model.EventReservationCancelled,
		TargetActorID: owner.ActorID,
		Title:         "Booking cancelled",
		Message:       fmt.Sprintf("%s cancelled a booking of %s", holder.DisplayName, resource.Name),
		Payload:       reservationPayload(res, resource),
		Priority:      model.PriorityHigh,
		CreatedAt:     time.Now().UTC(),
	})
}

// ServiceBooked informs the concierge provider.
func (n *Notifier) ServiceBooked(ctx context.Context, serviceID string, holder model.Actor, provider model.Actor, scheduledAt time.Time) {
	n.deliver(ctx, provider, model.NotificationEvent{
		Kind:          model.EventServiceBooked,
		TargetActorID: provider.ActorID,
		Title:         "Service booked",
		Message:       fmt.Sprintf("%s booked service %s", holder.DisplayName, serviceID),
		Payload: map[string]any{
			"serviceId":   serviceID,
			"holderId":    holder.ActorID,
			"scheduledAt": scheduledAt,
		},
		Priority:  model.PriorityHigh,
		CreatedAt: time.Now().UTC(),
	})
}

// EventRegistrationCreated fans a new registration out to all admins.
func (n *Notifier) EventRegistrationCreated(ctx context.Context, eventID string, holder model.Actor) {
	count := n.live.Broadcast(model.NotificationEvent{
		Kind:    model.EventRegistrationCreated,
		Title:   "New event registration",
		Message: fmt.Sprintf("%s registered for event %s", holder.DisplayName, eventID),
		Payload: map[string]any{
			"eventId":  eventID,
			"holderId": holder.ActorID,
		},
		Priority:  model.PriorityMedium,
		CreatedAt: time.Now().UTC(),
	}, model.RoleAdmin)
	n.log.Debug().Int("admins", count).Str("event_id", eventID).Msg("registration fan-out complete")
}

// deliver sends one event to one actor: capability check, live attempt,
// then the out-of-band path for high-value events.
func (n *Notifier) deliver(ctx context.Context, target model.Actor, event model.NotificationEvent) {
	if !AllowedEvent(target.Role, event.Kind) {
		n.log.Debug().Str("actor_id", target.ActorID).Str("role", string(target.Role)).
			Str("kind", string(event.Kind)).Msg("event kind not permitted for role, dropped")
		return
	}

	if n.live.Send(target.ActorID, event) {
		return
	}

	if !event.Priority.NeedsFallback() {
		n.log.Debug().Str("actor_id", target.ActorID).Str("kind", string(event.Kind)).
			Msg("live delivery failed, low-value event dropped")
		return
	}

	if !n.fallback.SendAlert(ctx, target.ActorID, event.Message) {
		n.log.Warn().Str("actor_id", target.ActorID).Str("kind", string(event.Kind)).
			Msg("fallback delivery failed, event lost")
	}
}

func reservationPayload(res model.Reservation, resource model.Resource) map[string]any {
	return map[string]any{
		"reservationId": res.ID,
		"resourceId":    resource.ResourceID,
		"resourceName":  resource.Name,
		"holderId":      res.HolderID,
		"startTime":     res.StartTime,
		"endTime":       res.EndTime,
		"status":        res.Status,
	}
}
