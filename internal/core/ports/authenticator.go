package ports

import (
	"context"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// Authenticator is the authentication collaborator consumed by the session.
//
// Authenticate fails with domain.ErrAuthenticationFailed without saying why.
// CreateAccount fails with a *domain.RegistrationError carrying a
// display-only reason.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Identity, error)
	CreateAccount(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, error)
}

// IdentityStore remembers the last authenticated identity across restarts.
type IdentityStore interface {
	// Load returns (nil, nil) when nothing is remembered.
	Load(ctx context.Context) (*domain.Identity, error)
	Save(ctx context.Context, identity *domain.Identity) error
	Clear(ctx context.Context) error
}

// TokenClaims is what a verified bearer token asserts about its holder.
type TokenClaims struct {
	TokenID  string
	UserID   string
	Email    string
	Name     string
	Role     domain.Role
	ExpireAt int64
}

// RevocationList tracks bearer tokens invalidated by logout.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expireAt int64) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
