package notify

import "github.com/harborlink/marina/internal/model"

// Capability declares what a role may receive and which cache key
// families its reads are scoped to. Resolved once at the boundary
// instead of ad-hoc role checks inside handlers.
type Capability struct {
	Events      []model.EventKind
	CacheScopes []string
}

var capabilities = map[model.Role]Capability{
	model.RoleMember: {
		Events:      []model.EventKind{model.EventWelcome, model.EventReservationCreated, model.EventReservationCancelled, model.EventServiceBooked, model.EventRegistrationCreated},
		CacheScopes: []string{"bookings:", "resources:"},
	},
	model.RoleOwner: {
		Events:      []model.EventKind{model.EventWelcome, model.EventReservationCreated, model.EventReservationCancelled, model.EventMaintenanceAlert},
		CacheScopes: []string{"bookings:", "resources:", "analytics:"},
	},
	model.RoleProvider: {
		Events:      []model.EventKind{model.EventWelcome, model.EventServiceBooked, model.EventMaintenanceAlert},
		CacheScopes: []string{"bookings:", "resources:"},
	},
	model.RoleAdmin: {
		Events: []model.EventKind{model.EventWelcome, model.EventReservationCreated, model.EventReservationCancelled,
			model.EventServiceBooked, model.EventRegistrationCreated, model.EventMaintenanceAlert},
		CacheScopes: []string{"bookings:", "resources:", "analytics:"},
	},
}

// AllowedEvent reports whether a role may receive events of this kind.
// Unknown roles receive nothing but the welcome event.
func AllowedEvent(role model.Role, kind model.EventKind) bool {
	if kind == model.EventWelcome {
		return true
	}
	c, ok := capabilities[role]
	if !ok {
		return false
	}
	for _, k := range c.Events {
		if k == kind {
			return true
		}
	}
	return false
}

// CacheScopes returns the cache key prefixes a role's reads live under.
func CacheScopes(role model.Role) []string {
	return capabilities[role].CacheScopes
}
