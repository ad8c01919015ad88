package securevault

import "github.com/aloks98/securevault/identity"

// Phase is the authentication phase of a session.
type Phase int

const (
	// Anonymous means no user is signed in.
	Anonymous Phase = iota
	// Authenticated means a user is signed in.
	Authenticated
)

func (p Phase) String() string {
	if p == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// State is a snapshot of a session. Authenticated implies User != nil.
// Loading is independent of the phase.
type State struct {
	User          *identity.User
	Authenticated bool
	Loading       bool
}

// Phase returns the authentication phase.
func (s State) Phase() Phase {
	if s.Authenticated {
		return Authenticated
	}
	return Anonymous
}

func (s State) equal(o State) bool {
	if s.Authenticated != o.Authenticated || s.Loading != o.Loading {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == o.User
	}
	return *s.User == *o.User
}
