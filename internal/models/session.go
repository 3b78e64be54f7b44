package models

import "time"

// Role identifies the access level of an authenticated user.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RoleUser         Role = "user"
)

// Session is the authenticated identity held by the client. Either all four
// fields are set (authenticated) or all are empty (anonymous); the session is
// only ever replaced as a whole, never patched field by field.
type Session struct {
	Token    string `json:"token"`
	Role     Role   `json:"role"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// Anonymous is the empty session published after logout or auth rejection.
var Anonymous = Session{}

// Authenticated reports whether the session carries a usable identity. All
// four fields must be set; a record missing any of them is treated as
// anonymous.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Role != "" && s.UserID != 0 && s.Username != ""
}

// PendingMFAChallenge is the intermediate state between a successful
// credential check and second-factor verification. The temp token stays valid
// for retries until it expires server-side.
type PendingMFAChallenge struct {
	TempToken string
	EmailHint string
	IssuedAt  time.Time
}
