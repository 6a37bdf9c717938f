package domain

// Principal is the identity attached to a request: either Anonymous or
// Authenticated. The set is closed; consumers switch on the concrete type.
type Principal interface {
	principal()
}

// Anonymous is a request without a resolvable session.
type Anonymous struct{}

// Authenticated is a request whose session resolved to a persisted user.
type Authenticated struct {
	User *User
}

func (Anonymous) principal()     {}
func (Authenticated) principal() {}
