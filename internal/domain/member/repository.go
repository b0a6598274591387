package member

import (
	"context"
)

// Repository defines the persistence contract for members.
type Repository interface {
	// Create stores a new member.
	// Returns shared.ErrMemberExists if the email is taken.
	Create(ctx context.Context, m *Member) error

	// GetByID returns a member by internal ID.
	// Returns shared.ErrMemberNotFound if absent.
	GetByID(ctx context.Context, id string) (*Member, error)

	// GetByEmail returns a member by email.
	// Returns shared.ErrMemberNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*Member, error)

	// Update persists the current state of a member.
	// Returns shared.ErrMemberNotFound if absent.
	Update(ctx context.Context, m *Member) error
}
