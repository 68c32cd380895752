package service

import (
	"slices"
	"sync"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// StackNavigator is an in-memory screen stack.
type StackNavigator struct {
	mu    sync.Mutex
	stack []domain.Route
}

// NewStackNavigator returns a navigator showing initial, or nothing when
// initial is domain.RouteNone.
func NewStackNavigator(initial domain.Route) *StackNavigator {
	n := &StackNavigator{}
	if initial != domain.RouteNone {
		n.stack = []domain.Route{initial}
	}
	return n
}

func (n *StackNavigator) Current() domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return domain.RouteNone
	}
	return n.stack[len(n.stack)-1]
}

func (n *StackNavigator) Replace(route domain.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		n.stack = append(n.stack, route)
		return
	}
	n.stack[len(n.stack)-1] = route
}

// Push opens route on top of the current screen.
func (n *StackNavigator) Push(route domain.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, route)
}

// Back pops the current screen. It reports false when there is nothing to
// go back to.
func (n *StackNavigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) < 2 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// History returns the stack bottom to top.
func (n *StackNavigator) History() []domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.stack)
}
