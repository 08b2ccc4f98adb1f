package identity

import "github.com/dmitrijs2005/daybook/internal/client/models"

type State int

const (
	Unauthenticated State = iota
	Anonymous
	Durable
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Durable:
		return "durable"
	default:
		return "unauthenticated"
	}
}

func stateOf(p models.Principal) State {
	if p.Anonymous {
		return Anonymous
	}
	return Durable
}

// Handler receives the principal and state after a session change. The
// principal is zero when the state is Unauthenticated.
type Handler func(p models.Principal, s State)
