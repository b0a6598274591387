package http

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/aslan-academy/academy-management/internal/domain/member"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// API TOKEN AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// API tokens are opaque strings of the form "<memberID>.<secret>" issued by
// cmd/admin. Only a bcrypt hash of the secret is stored, so the member ID
// prefix is needed to locate the record before comparing.

// authenticated wraps a handler with Bearer token authentication. The
// resolved member must hold a lecture-managing role.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.resolveMember(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if !m.Role.CanManageLectures() {
			writeDomainError(w, shared.ErrRoleNotPermitted)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyMember, m)
		next(w, r.WithContext(ctx))
	}
}

// resolveMember extracts and verifies the Bearer token.
func (s *Server) resolveMember(r *http.Request) (*member.Member, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, shared.ErrLoginRequired
	}

	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return nil, shared.ErrInvalidToken
	}

	memberID, secret, ok := strings.Cut(token, ".")
	if !ok || memberID == "" || secret == "" {
		return nil, shared.ErrInvalidToken
	}

	m, err := s.deps.Members.GetByID(r.Context(), memberID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}

	if m.APITokenHash == "" {
		return nil, shared.ErrInvalidToken
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.APITokenHash), []byte(secret)); err != nil {
		s.logger.Warn("API token rejected", logger.MemberID(memberID))
		return nil, shared.ErrInvalidToken
	}

	return m, nil
}

// memberFrom returns the authenticated member stored by the auth
// middleware, or nil on unauthenticated routes.
func memberFrom(ctx context.Context) *member.Member {
	if m, ok := ctx.Value(contextKeyMember).(*member.Member); ok {
		return m
	}
	return nil
}
