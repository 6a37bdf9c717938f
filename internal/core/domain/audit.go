package domain

import "time"

// AuthOutcome classifies a single login attempt.
type AuthOutcome string

const (
	OutcomeSuccess      AuthOutcome = "success"
	OutcomeUserNotFound AuthOutcome = "user_not_found"
	OutcomeBadPassword  AuthOutcome = "bad_password"
	OutcomeHashError    AuthOutcome = "hash_error"
)

// AuthAttempt is the internal record of a login attempt. It keeps the
// differentiated failure reason that is never returned to the caller.
type AuthAttempt struct {
	Login    string
	UserID   string // empty unless the login resolved to a user
	Outcome  AuthOutcome
	RemoteIP string
	At       time.Time
}
