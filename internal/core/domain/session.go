package domain

// SessionState is the client-side authentication lifecycle.
type SessionState string

const (
	StateInitializing    SessionState = "initializing"
	StateUnauthenticated SessionState = "unauthenticated"
	StateAwaitingRole    SessionState = "awaiting_role"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
)

// sessionTransitions is the allowed session state machine.
var sessionTransitions = map[SessionState][]SessionState{
	StateInitializing:    {StateUnauthenticated, StateAuthenticated},
	StateUnauthenticated: {StateAwaitingRole, StateAuthenticating},
	StateAwaitingRole:    {StateAwaitingRole, StateAuthenticating},
	StateAuthenticating:  {StateAuthenticated, StateUnauthenticated},
	StateAuthenticated:   {StateUnauthenticated},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Loading reports whether an auth check or call is in flight in state s.
func (s SessionState) Loading() bool {
	return s == StateInitializing || s == StateAuthenticating
}

// SessionSnapshot is an immutable view of a session after a transition.
type SessionSnapshot struct {
	// Seq increases by one on every transition, starting at 0 for the
	// initial state.
	Seq      uint64
	State    SessionState
	Role     Role
	Identity *Identity
	Loading  bool
}
