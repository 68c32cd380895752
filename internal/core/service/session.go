package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// Observer receives a snapshot after every session transition.
type Observer func(domain.SessionSnapshot)

type observerEntry struct {
	id int
	fn Observer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIdentityStore remembers the authenticated identity across restarts.
func WithIdentityStore(store ports.IdentityStore) SessionOption {
	return func(s *Session) { s.store = store }
}

// Session is the single authoritative holder of client authentication state.
// All mutation goes through SetRole, Login, Register, Logout and the startup
// check (Initialize/Restore). Observers see every transition in order.
type Session struct {
	auth  ports.Authenticator
	store ports.IdentityStore
	log   zerolog.Logger

	mu       sync.Mutex
	state    domain.SessionState
	role     domain.Role
	identity *domain.Identity
	seq      uint64
	// epoch changes on Close; results of calls started in an older epoch
	// are dropped.
	epoch  uint64
	closed bool

	observers []observerEntry
	nextObs   int
	pending   []domain.SessionSnapshot
	draining  bool
}

// NewSession returns a session in the Initializing state.
func NewSession(auth ports.Authenticator, log zerolog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		auth:  auth,
		log:   log.With().Str("component", "session").Logger(),
		state: domain.StateInitializing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every later transition. The returned func
// removes it.
func (s *Session) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(e observerEntry) bool { return e.id == id })
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Initialize performs the startup "already logged in?" check against the
// identity store, if one is configured. A store failure is logged and
// treated as no remembered identity.
func (s *Session) Initialize(ctx context.Context) error {
	var remembered *domain.Identity
	if s.store != nil {
		id, err := s.store.Load(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to load remembered identity")
		} else {
			remembered = id
		}
	}
	return s.Restore(remembered)
}

// Restore leaves Initializing: to Authenticated when identity is usable,
// otherwise to Unauthenticated.
func (s *Session) Restore(identity *domain.Identity) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.state != domain.StateInitializing {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("restore from %s: %w", state, domain.ErrInvalidTransition)
	}

	var err error
	if identity != nil && identity.ID != "" && identity.Role.Valid() {
		s.identity = identity.Clone()
		s.role = identity.Role
		err = s.transitionLocked(domain.StateAuthenticated)
	} else {
		err = s.transitionLocked(domain.StateUnauthenticated)
	}
	s.mu.Unlock()
	s.flush()
	return err
}

// SetRole records the role chosen before registering or logging in.
func (s *Session) SetRole(role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("set role %q: %w", role, domain.ErrUnknownRole)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	switch s.state {
	case domain.StateUnauthenticated, domain.StateAwaitingRole:
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("set role from %s: %w", state, domain.ErrInvalidTransition)
	}

	s.role = role
	err := s.transitionLocked(domain.StateAwaitingRole)
	s.mu.Unlock()
	s.flush()
	return err
}

// Login authenticates an existing account. Any collaborator failure is
// reported as domain.ErrAuthenticationFailed.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	epoch, pendingRole, err := s.begin("login", false, domain.StateUnauthenticated, domain.StateAwaitingRole)
	if err != nil {
		return nil, err
	}

	identity, callErr := s.auth.Authenticate(ctx, email, password)
	if callErr != nil {
		s.log.Info().Err(callErr).Msg("login rejected")
		callErr = domain.ErrAuthenticationFailed
	}

	role := pendingRole
	if identity != nil && identity.Role.Valid() {
		role = identity.Role
	}
	if !role.Valid() {
		role = domain.RoleWorker
	}
	return s.finish(ctx, epoch, "login", identity, callErr, role)
}

// Register creates a new account with the previously selected role.
func (s *Session) Register(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	epoch, role, err := s.begin("register", true, domain.StateUnauthenticated, domain.StateAwaitingRole)
	if err != nil {
		return nil, err
	}

	identity, callErr := s.auth.CreateAccount(ctx, email, password, name, role)
	if callErr != nil {
		s.log.Info().Err(callErr).Msg("registration rejected")
		var regErr *domain.RegistrationError
		if !errors.As(callErr, &regErr) {
			regErr = &domain.RegistrationError{}
		}
		callErr = regErr
	}
	return s.finish(ctx, epoch, "register", identity, callErr, role)
}

// Logout clears the identity and role. It is a no-op unless the session is
// Authenticated.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.state != domain.StateAuthenticated {
		s.mu.Unlock()
		return
	}
	s.identity = nil
	s.role = domain.RoleUnset
	_ = s.transitionLocked(domain.StateUnauthenticated)
	s.mu.Unlock()
	s.flush()

	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear remembered identity")
		}
	}
}

// Close tears the session down. Results of in-flight calls are discarded
// and later operations fail with domain.ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.epoch++
	s.observers = nil
	s.pending = nil
}

// begin moves to Authenticating and returns the epoch the call started in
// along with the pending role.
func (s *Session) begin(op string, requireRole bool, from ...domain.SessionState) (uint64, domain.Role, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, domain.RoleUnset, domain.ErrSessionClosed
	}
	if s.state == domain.StateAuthenticating {
		s.mu.Unlock()
		return 0, domain.RoleUnset, domain.ErrOperationInProgress
	}
	if !slices.Contains(from, s.state) {
		state := s.state
		s.mu.Unlock()
		return 0, domain.RoleUnset, fmt.Errorf("%s from %s: %w", op, state, domain.ErrInvalidTransition)
	}
	if requireRole && !s.role.Valid() {
		s.mu.Unlock()
		return 0, domain.RoleUnset, domain.ErrRoleRequired
	}

	if err := s.transitionLocked(domain.StateAuthenticating); err != nil {
		s.mu.Unlock()
		return 0, domain.RoleUnset, err
	}
	epoch, role := s.epoch, s.role
	s.mu.Unlock()
	s.flush()
	return epoch, role, nil
}

// finish applies the outcome of an authentication call started in epoch.
func (s *Session) finish(ctx context.Context, epoch uint64, op string, identity *domain.Identity, callErr error, role domain.Role) (*domain.Identity, error) {
	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug().Str("op", op).Msg("discarding stale authentication result")
		return nil, domain.ErrSessionClosed
	}

	if callErr == nil && identity == nil {
		callErr = domain.ErrAuthenticationFailed
		if op == "register" {
			callErr = &domain.RegistrationError{}
		}
	}
	if callErr != nil {
		s.identity = nil
		s.role = domain.RoleUnset
		_ = s.transitionLocked(domain.StateUnauthenticated)
		s.mu.Unlock()
		s.flush()
		return nil, callErr
	}

	current := identity.Clone()
	current.Role = role
	s.identity = current
	s.role = role
	_ = s.transitionLocked(domain.StateAuthenticated)
	out := current.Clone()
	s.mu.Unlock()
	s.flush()

	s.log.Info().Str("op", op).Str("user_id", out.ID).Str("role", string(role)).Msg("session authenticated")

	if s.store != nil {
		if err := s.store.Save(ctx, out); err != nil {
			s.log.Warn().Err(err).Msg("failed to remember identity")
		}
	}
	return out, nil
}

func (s *Session) transitionLocked(next domain.SessionState) error {
	if !s.state.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", s.state, next, domain.ErrInvalidTransition)
	}
	s.log.Debug().Str("from", string(s.state)).Str("to", string(next)).Uint64("seq", s.seq+1).Msg("session transition")
	s.state = next
	s.seq++
	if !s.closed {
		s.pending = append(s.pending, s.snapshotLocked())
	}
	return nil
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		Seq:      s.seq,
		State:    s.state,
		Role:     s.role,
		Identity: s.identity.Clone(),
		Loading:  s.state.Loading(),
	}
}

// flush delivers queued snapshots in order. A call made while another
// goroutine (or an observer up the stack) is already draining returns at
// once; the drainer picks its snapshots up.
func (s *Session) flush() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		snap := s.pending[0]
		s.pending = s.pending[1:]
		observers := slices.Clone(s.observers)
		s.mu.Unlock()

		for _, o := range observers {
			o.fn(snap)
		}

		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}
