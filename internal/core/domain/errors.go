package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidTransition   = errors.New("invalid session transition")
	ErrOperationInProgress = errors.New("authentication already in progress")
	ErrRoleRequired        = errors.New("role must be selected before registering")
	ErrSessionClosed       = errors.New("session closed")
	ErrUnknownRole         = errors.New("unknown role")

	// ErrAuthenticationFailed never says whether the email exists.
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrRegistrationFailed   = errors.New("registration failed")

	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrForbidden            = errors.New("access forbidden")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrJobNotFound          = errors.New("job not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("sender is not a participant")
	ErrInvalidInput         = errors.New("invalid input")
)

// RegistrationError carries the opaque, display-only reason an account could
// not be created.
type RegistrationError struct {
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.Reason == "" {
		return ErrRegistrationFailed.Error()
	}
	return ErrRegistrationFailed.Error() + ": " + e.Reason
}

func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistrationFailed
}

// ValidationError maps form field names to the message shown next to them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the message for name, or "" when the field is valid.
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}
