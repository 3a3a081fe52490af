package mq

import (
	"time"
)

// Routing keys of activity events.
const (
	RoutingKeyRoutineCreated      = "routine.created"
	RoutingKeyRoutineUpdated      = "routine.updated"
	RoutingKeyRoutineDeleted      = "routine.deleted"
	RoutingKeyRoutineToggled      = "routine.toggled"
	RoutingKeyProfileThemeChanged = "profile.theme_changed"
)

// Event is the envelope of every activity event.
type Event struct {
	Type       string    `json:"type"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}
