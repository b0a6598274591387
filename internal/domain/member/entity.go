// Package member contains the identity model for academy staff: teachers
// and administrators arriving through an external OAuth2 provider.
package member

import (
	"strings"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/shared"
)

// Role is the access level of a member. Everyone starts as a guest and is
// elevated out of band (see cmd/admin).
type Role string

const (
	RoleGuest   Role = "GUEST"
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanManageLectures reports whether the role may create lectures and manage
// enrollments.
func (r Role) CanManageLectures() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Member is a staff identity sourced from an OAuth2 provider.
type Member struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// Name / Email / Picture - profile data from the provider.
	Name    string
	Email   string
	Picture string

	// Provider / ProviderID - which provider authenticated this member and
	// the member's key there (e.g. "google" + sub claim).
	Provider   string
	ProviderID string

	// Role - access level; starts at GUEST.
	Role Role

	// APITokenHash - bcrypt hash of the member's opaque API token. Empty
	// until a token is issued out of band.
	APITokenHash string

	// CreatedAt - record creation time; never updated afterwards.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewMemberParams contains the fields required to create a member.
type NewMemberParams struct {
	ID         string
	Name       string
	Email      string
	Picture    string
	Provider   string
	ProviderID string
}

// NewMember creates a member in the GUEST role.
func NewMember(params NewMemberParams) (*Member, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("member", "Create", shared.ErrEmptyValue, "internal id is required")
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("member", "Create", shared.ErrInvalidFormat, "a valid email is required")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.NewDomainError("member", "Create", shared.ErrEmptyValue, "name is required")
	}

	now := time.Now().UTC()

	return &Member{
		ID:         params.ID,
		Name:       name,
		Email:      email,
		Picture:    params.Picture,
		Provider:   params.Provider,
		ProviderID: params.ProviderID,
		Role:       RoleGuest,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Promote changes the member's role.
func (m *Member) Promote(role Role) error {
	if !role.IsValid() {
		return shared.ErrInvalidRole
	}
	m.Role = role
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// SetAPITokenHash stores a new token hash, replacing any previous token.
func (m *Member) SetAPITokenHash(hash string) {
	m.APITokenHash = hash
	m.UpdatedAt = time.Now().UTC()
}
