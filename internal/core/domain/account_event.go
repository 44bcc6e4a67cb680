package domain

import "time"

// AccountEventType names an auditable change to an account.
type AccountEventType string

const (
	EventRegistered      AccountEventType = "registered"
	EventLoggedIn        AccountEventType = "logged_in"
	EventLoggedOut       AccountEventType = "logged_out"
	EventEmailChanged    AccountEventType = "email_changed"
	EventPasswordChanged AccountEventType = "password_changed"
	EventNameChanged     AccountEventType = "name_changed"
	EventDeleted         AccountEventType = "deleted"
)

// AccountEvent records who did what to which account.
type AccountEvent struct {
	UserID     string
	ActorID    string
	Type       AccountEventType
	OccurredAt time.Time
	Details    map[string]string // optional
}
