package model

import "time"

// Role identifies the kind of actor holding a session or a reservation.
type Role string

const (
	RoleMember   Role = "member"
	RoleOwner    Role = "owner"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// Reservation is a claim on a bookable resource over the half-open
// interval [StartTime, EndTime).
type Reservation struct {
	ID         string            `json:"id"`
	ResourceID string            `json:"resourceId"`
	HolderID   string            `json:"holderId"`
	StartTime  time.Time         `json:"startTime"`
	EndTime    time.Time         `json:"endTime"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Overlaps reports whether the reservation intersects the half-open
// interval [start, end). The end instant is excluded, so back-to-back
// reservations do not conflict.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// Completed derives the completed state; it is never stored.
func (r Reservation) Completed(now time.Time) bool {
	return r.Status == StatusConfirmed && !now.Before(r.EndTime)
}

// Actor is a platform user as the storage collaborator returns it.
type Actor struct {
	ActorID     string `json:"actorId"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	MemberTier  string `json:"memberTier,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Resource is the bookable entity (a yacht, a service slot).
type Resource struct {
	ResourceID string  `json:"resourceId"`
	Name       string  `json:"name"`
	SizeMeters float64 `json:"sizeMeters"`
	OwnerID    string  `json:"ownerId"`
}

// EventKind is the closed set of notification kinds this core emits.
type EventKind string

const (
	EventReservationCreated   EventKind = "reservation-created"
	EventReservationCancelled EventKind = "reservation-cancelled"
	EventServiceBooked        EventKind = "service-booked"
	EventRegistrationCreated  EventKind = "event-registered"
	EventMaintenanceAlert     EventKind = "maintenance-alert"
	EventWelcome              EventKind = "welcome"
)

// Priority orders notification importance.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// NeedsFallback reports whether a failed live delivery should be retried
// over the out-of-band channel.
func (p Priority) NeedsFallback() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// NotificationEvent is a fact to deliver to one actor. It is not
// persisted; delivery is at-most-once.
type NotificationEvent struct {
	Kind          EventKind      `json:"kind"`
	TargetActorID string         `json:"-"`
	Title         string         `json:"title,omitempty"`
	Message       string         `json:"message,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	Priority      Priority       `json:"priority"`
	CreatedAt     time.Time      `json:"createdAt"`
}
