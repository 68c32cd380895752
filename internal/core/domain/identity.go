package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role designates which side of the marketplace an identity acts on.
type Role string

const (
	RoleUnset    Role = ""
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
)

// Valid reports whether r is one of the selectable roles.
func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleEmployer
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleUnset, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Identity models the authenticated actor.
type Identity struct {
	ID           string    `json:"id"            yaml:"id"`
	Name         string    `json:"name"          yaml:"name"`
	Email        string    `json:"email"         yaml:"email"`
	Phone        string    `json:"phone"         yaml:"phone"`
	Role         Role      `json:"role"          yaml:"role"`
	ProfileImage string    `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"    yaml:"created_at"`

	// Token is the bearer credential issued by the backend. Empty for
	// identities produced by an in-process authenticator.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Clone returns a copy that shares no state with i.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Account is the stored form of an identity, including its credential hash.
type Account struct {
	Identity
	PasswordHash string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}
