package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// Navigator is the screen stack the guard steers.
type Navigator interface {
	Current() domain.Route
	// Replace swaps the current screen without growing the back history.
	Replace(route domain.Route)
}

// Decision is the outcome of the navigation policy for one session state.
type Decision struct {
	// Suspend means nothing should be rendered yet.
	Suspend  bool
	Target   domain.Route
	Redirect bool
}

// Resolve maps a session state and the current route to a navigation
// decision. First match wins:
//
//	Initializing    -> suspend
//	Authenticated   -> tabs, redirect unless already inside the tabs area
//	anything else   -> welcome, redirect unless already inside the auth area
func Resolve(state domain.SessionState, current domain.Route) Decision {
	switch state {
	case domain.StateInitializing:
		return Decision{Suspend: true}
	case domain.StateAuthenticated:
		return Decision{Target: domain.RouteTabs, Redirect: current.Group() != domain.GroupTabs}
	default:
		return Decision{Target: domain.RouteWelcome, Redirect: current.Group() != domain.GroupAuth}
	}
}

// CanAccess reports whether role may open route. Posting jobs is for
// employers; the rest of the tabs area is open to both roles.
func CanAccess(role domain.Role, route domain.Route) bool {
	switch {
	case route == domain.RouteJobCreate:
		return role == domain.RoleEmployer
	case route.Group() == domain.GroupTabs:
		return role.Valid()
	default:
		return true
	}
}

// Guard re-evaluates Resolve once per session transition and applies
// redirects to its navigator.
type Guard struct {
	nav Navigator
	log zerolog.Logger

	mu        sync.Mutex
	evaluated bool
	lastSeq   uint64
	last      Decision
}

// NewGuard returns a guard steering nav.
func NewGuard(nav Navigator, log zerolog.Logger) *Guard {
	return &Guard{nav: nav, log: log.With().Str("component", "guard").Logger()}
}

// Attach subscribes g to s and evaluates the current state immediately.
// The returned func detaches it.
func (g *Guard) Attach(s *Session) func() {
	detach := s.Subscribe(g.Observe)
	g.Observe(s.Snapshot())
	return detach
}

// Observe evaluates snap unless a snapshot with the same or a later Seq was
// already handled.
func (g *Guard) Observe(snap domain.SessionSnapshot) {
	g.mu.Lock()
	if g.evaluated && snap.Seq <= g.lastSeq {
		g.mu.Unlock()
		return
	}
	g.evaluated = true
	g.lastSeq = snap.Seq
	current := g.nav.Current()
	d := Resolve(snap.State, current)
	g.last = d
	g.mu.Unlock()

	if d.Redirect {
		g.log.Debug().
			Str("state", string(snap.State)).
			Str("from", string(current)).
			Str("to", string(d.Target)).
			Msg("redirect")
		g.nav.Replace(d.Target)
	}
}

// Last returns the most recent decision.
func (g *Guard) Last() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
