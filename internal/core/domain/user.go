package domain

import (
	"strings"
	"time"
)

// User models a registered account.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	NormalizedUsername string    `json:"-"`
	Email              string    `json:"email"`
	NormalizedEmail    string    `json:"-"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	PhoneNumber        string    `json:"phone_number,omitempty"`
	ProfilePictureURL  string    `json:"profile_picture_url,omitempty"`
	Roles              []Role    `json:"roles"`
	AccessFailedCount  int       `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasRole reports whether the user is assigned role r.
func (u *User) HasRole(r Role) bool {
	return hasRole(u.Roles, r)
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID    string
	Roles []Role
}

// ActorFromUser builds the actor for a loaded user.
func ActorFromUser(u *User) Actor {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return Actor{ID: u.ID, Roles: roles}
}

func (a Actor) HasRole(r Role) bool {
	return hasRole(a.Roles, r)
}

// IsAdmin reports whether the actor holds the Admin role.
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

func hasRole(roles []Role, r Role) bool {
	for _, have := range roles {
		if have.Normalized() == r.Normalized() {
			return true
		}
	}
	return false
}

// Normalize returns the canonical form used for uniqueness comparison of
// usernames and emails.
func Normalize(s string) string {
	return strings.ToUpper(s)
}

// UsernameFromEmail returns the local part of an email address. The split
// is at the last '@': a domain never contains one, while a quoted local part
// such as "a@b"@example.com may.
func UsernameFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at]
}
