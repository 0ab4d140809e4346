package audit

import "time"

// Event is an immutable, append-only record of a security-relevant action.
//
// Invariants:
// - Events are never updated or deleted.
// - Username is required: every event has a subject account.
// - ip capture is best-effort; audit failures never block the request.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// Username is the account the event concerns.
	Username string `json:"username" db:"username"`
	// Actor is the admin acting on Username, when different.
	Actor string `json:"actor,omitempty" db:"actor"`

	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin        EventType = "login"
	EventTypeLogout       EventType = "logout"
	EventTypeTokenRefresh EventType = "token_refresh"
	EventTypeAdminAction  EventType = "admin_action"
)
