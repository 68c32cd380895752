package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// unknownEmailHash is compared against when no account matches, so both
// failure paths do one bcrypt comparison.
var unknownEmailHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-account"), bcrypt.DefaultCost)

// AuthService implements account registration, login and token checks.
// It is the server-side authentication collaborator.
type AuthService struct {
	repo    ports.AccountRepository
	tokens  *TokenIssuer
	revoked ports.RevocationList
	log     zerolog.Logger
	now     func() time.Time
}

// NewAuthService wires the account repository and token issuer. revoked may
// be nil, in which case logout does not invalidate tokens.
func NewAuthService(repo ports.AccountRepository, tokens *TokenIssuer, revoked ports.RevocationList, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, revoked: revoked, log: log, now: time.Now}
}

// Authenticate implements ports.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrAuthenticationFailed
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(unknownEmailHash, []byte(password))
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrAuthenticationFailed
	}

	return account.Identity.Clone(), nil
}

// CreateAccount implements ports.Authenticator.
func (s *AuthService) CreateAccount(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, &domain.RegistrationError{Reason: "name, email and password are required"}
	}
	if !role.Valid() {
		return nil, &domain.RegistrationError{Reason: "account type must be worker or employer"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		Identity: domain.Identity{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Role:      role,
			CreatedAt: now,
		},
		PasswordHash: string(hash),
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, &domain.RegistrationError{Reason: "email already registered"}
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("account created")
	return created.Identity.Clone(), nil
}

// Register creates an account and returns it with a bearer token.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.Identity, string, error) {
	identity, err := s.CreateAccount(ctx, email, password, name, role)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// Login authenticates and returns the identity with a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	identity, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// Logout revokes token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.TokenID, claims.ExpireAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("token revoked")
	return nil
}

// Verify checks the signature, expiry and revocation status of token.
func (s *AuthService) Verify(ctx context.Context, token string) (*ports.TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.revoked == nil {
		return claims, nil
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		s.log.Warn().Err(err).Msg("revocation check failed, rejecting token")
		return nil, fmt.Errorf("%w: revocation check failed", domain.ErrTokenInvalid)
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

// Profile returns the stored identity for userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.Identity, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account.Identity.Clone(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
