package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/member"
	"github.com/aslan-academy/academy-management/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MemberRepository implements member.Repository for PostgreSQL.
type MemberRepository struct {
	conn *Connection
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(conn *Connection) *MemberRepository {
	return &MemberRepository{conn: conn}
}

// Create stores a new member.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (
			id, name, email, picture, provider, provider_id, role,
			api_token_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		m.ID,
		m.Name,
		m.Email,
		m.Picture,
		m.Provider,
		m.ProviderID,
		string(m.Role),
		m.APITokenHash,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrMemberExists
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID returns a member by internal ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*member.Member, error) {
	query := `
		SELECT id, name, email, picture, provider, provider_id, role,
			   api_token_hash, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanMember(row)
}

// GetByEmail returns a member by email.
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	query := `
		SELECT id, name, email, picture, provider, provider_id, role,
			   api_token_hash, created_at, updated_at
		FROM members
		WHERE email = $1
	`

	row := r.conn.QueryRow(ctx, query, email)
	return r.scanMember(row)
}

// Update persists the current state of a member.
func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `
		UPDATE members SET
			name = $1,
			picture = $2,
			role = $3,
			api_token_hash = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		m.Name,
		m.Picture,
		string(m.Role),
		m.APITokenHash,
		time.Now().UTC(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrMemberNotFound
	}

	return nil
}

// scanMember scans a single member from a row.
func (r *MemberRepository) scanMember(row pgx.Row) (*member.Member, error) {
	var m member.Member
	var role string

	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Picture,
		&m.Provider,
		&m.ProviderID,
		&role,
		&m.APITokenHash,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}

	m.Role = member.Role(role)

	return &m, nil
}
