package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

type countingNavigator struct {
	*StackNavigator
	replaces []domain.Route
}

func (n *countingNavigator) Replace(route domain.Route) {
	n.replaces = append(n.replaces, route)
	n.StackNavigator.Replace(route)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		state   domain.SessionState
		current domain.Route
		want    Decision
	}{
		{"initializing suspends", domain.StateInitializing, domain.RouteNone, Decision{Suspend: true}},
		{"initializing ignores deep link", domain.StateInitializing, domain.RouteJobs, Decision{Suspend: true}},
		{"unauthenticated outside auth", domain.StateUnauthenticated, domain.RouteJobs, Decision{Target: domain.RouteWelcome, Redirect: true}},
		{"unauthenticated on nothing", domain.StateUnauthenticated, domain.RouteNone, Decision{Target: domain.RouteWelcome, Redirect: true}},
		{"unauthenticated inside auth", domain.StateUnauthenticated, domain.RouteLogin, Decision{Target: domain.RouteWelcome}},
		{"awaiting role inside auth", domain.StateAwaitingRole, domain.RouteRegister, Decision{Target: domain.RouteWelcome}},
		{"authenticating inside auth", domain.StateAuthenticating, domain.RouteLogin, Decision{Target: domain.RouteWelcome}},
		{"authenticated in auth", domain.StateAuthenticated, domain.RouteLogin, Decision{Target: domain.RouteTabs, Redirect: true}},
		{"authenticated deep link kept", domain.StateAuthenticated, domain.RouteMessages, Decision{Target: domain.RouteTabs}},
		{"authenticated chat kept", domain.StateAuthenticated, domain.ConversationRoute("c-1"), Decision{Target: domain.RouteTabs}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.state, tt.current); got != tt.want {
				t.Fatalf("Resolve(%s, %q) = %+v, want %+v", tt.state, tt.current, got, tt.want)
			}
		})
	}
}

func TestCanAccess(t *testing.T) {
	if CanAccess(domain.RoleWorker, domain.RouteJobCreate) {
		t.Fatal("worker must not open job creation")
	}
	if !CanAccess(domain.RoleEmployer, domain.RouteJobCreate) {
		t.Fatal("employer must open job creation")
	}
	if !CanAccess(domain.RoleWorker, domain.RouteSearch) {
		t.Fatal("worker must open search")
	}
	if CanAccess(domain.RoleUnset, domain.RouteProfile) {
		t.Fatal("unset role must not open the tabs area")
	}
	if !CanAccess(domain.RoleUnset, domain.RouteWelcome) {
		t.Fatal("auth screens are open to everyone")
	}
}

func TestGuard_FollowsSession(t *testing.T) {
	nav := &countingNavigator{StackNavigator: NewStackNavigator(domain.RouteNone)}
	s := NewSession(&stubAuthenticator{}, zerolog.Nop())
	g := NewGuard(nav, zerolog.Nop())
	detach := g.Attach(s)
	defer detach()

	if !g.Last().Suspend || len(nav.replaces) != 0 {
		t.Fatalf("expected suspended guard with no redirects, got %+v and %v", g.Last(), nav.replaces)
	}

	ctx := context.Background()
	_ = s.Initialize(ctx)
	if nav.Current() != domain.RouteWelcome {
		t.Fatalf("expected welcome, got %q", nav.Current())
	}

	nav.Push(domain.RouteLogin)
	if _, err := s.Login(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if nav.Current() != domain.RouteTabs {
		t.Fatalf("expected tabs after login, got %q", nav.Current())
	}

	s.Logout(ctx)
	if nav.Current() != domain.RouteWelcome {
		t.Fatalf("expected welcome after logout, got %q", nav.Current())
	}

	want := []domain.Route{domain.RouteWelcome, domain.RouteTabs, domain.RouteWelcome}
	if len(nav.replaces) != len(want) {
		t.Fatalf("expected redirects %v, got %v", want, nav.replaces)
	}
	for i := range want {
		if nav.replaces[i] != want[i] {
			t.Fatalf("expected redirects %v, got %v", want, nav.replaces)
		}
	}
}

func TestGuard_EvaluatesEachTransitionOnce(t *testing.T) {
	nav := &countingNavigator{StackNavigator: NewStackNavigator(domain.RouteJobs)}
	g := NewGuard(nav, zerolog.Nop())

	snap := domain.SessionSnapshot{Seq: 1, State: domain.StateUnauthenticated}
	g.Observe(snap)
	nav.StackNavigator.Replace(domain.RouteJobs)
	g.Observe(snap)

	if len(nav.replaces) != 1 {
		t.Fatalf("expected one redirect, got %v", nav.replaces)
	}

	g.Observe(domain.SessionSnapshot{Seq: 2, State: domain.StateUnauthenticated})
	if len(nav.replaces) != 2 {
		t.Fatalf("expected the next transition to be evaluated, got %v", nav.replaces)
	}
}

func TestGuard_KeepsDeepLinkWhenAllowed(t *testing.T) {
	nav := &countingNavigator{StackNavigator: NewStackNavigator(domain.RouteMessages)}
	s := NewSession(&stubAuthenticator{}, zerolog.Nop())
	g := NewGuard(nav, zerolog.Nop())
	g.Attach(s)

	_ = s.Restore(&domain.Identity{ID: "u-1", Role: domain.RoleWorker})
	if nav.Current() != domain.RouteMessages || len(nav.replaces) != 0 {
		t.Fatalf("deep link should survive, got %q and %v", nav.Current(), nav.replaces)
	}
}

func TestStackNavigator(t *testing.T) {
	nav := NewStackNavigator(domain.RouteNone)
	if nav.Current() != domain.RouteNone {
		t.Fatalf("expected empty navigator, got %q", nav.Current())
	}
	if nav.Back() {
		t.Fatal("Back on an empty stack should fail")
	}

	nav.Replace(domain.RouteWelcome)
	nav.Push(domain.RouteRegister)
	if !nav.Back() || nav.Current() != domain.RouteWelcome {
		t.Fatalf("expected welcome after back, got %q", nav.Current())
	}

	nav.Push(domain.RouteLogin)
	nav.Replace(domain.RouteTabs)
	history := nav.History()
	if len(history) != 2 || history[0] != domain.RouteWelcome || history[1] != domain.RouteTabs {
		t.Fatalf("unexpected history %v", history)
	}
}
