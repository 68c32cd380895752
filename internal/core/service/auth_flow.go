package service

import (
	"context"
	"errors"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// AuthFlow backs the login and registration screens: it validates the form
// and only then drives the session.
type AuthFlow struct {
	session *Session
}

func NewAuthFlow(session *Session) *AuthFlow {
	return &AuthFlow{session: session}
}

// SubmitLogin validates form and logs in.
func (f *AuthFlow) SubmitLogin(ctx context.Context, form LoginForm) (*domain.Identity, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return f.session.Login(ctx, form.Email, form.Password)
}

// SubmitRegister validates form, records the chosen role and registers.
func (f *AuthFlow) SubmitRegister(ctx context.Context, form RegisterForm) (*domain.Identity, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := f.session.SetRole(form.Role); err != nil {
		return nil, err
	}
	return f.session.Register(ctx, form.Email, form.Password, form.Name)
}

// UserMessage returns the banner text shown for err. Authentication
// failures share one message whatever the cause.
func UserMessage(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "Please correct the highlighted fields"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrRegistrationFailed):
		return "Registration failed. Please try again."
	case errors.Is(err, domain.ErrRoleRequired):
		return "Please select your account type"
	case errors.Is(err, domain.ErrOperationInProgress):
		return "Please wait, sign-in is already in progress"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "That action is not available right now"
	case errors.Is(err, domain.ErrSessionClosed):
		return "Your session has ended"
	default:
		return "Something went wrong. Please try again."
	}
}
