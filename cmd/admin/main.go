// Package main is the academy staff administration tool. It bootstraps
// members, elevates roles and issues API tokens out of band, since the
// server itself never grants roles.
//
// Usage:
//
//	admin -email teacher@academy.kr -create -name "Kim"
//	admin -email teacher@academy.kr -role TEACHER
//	admin -email teacher@academy.kr -issue-token
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aslan-academy/academy-management/config"
	"github.com/aslan-academy/academy-management/internal/domain/member"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/infrastructure/persistence/postgres"
)

const tokenSecretBytes = 32

func main() {
	var (
		email      = flag.String("email", "", "member email (required)")
		create     = flag.Bool("create", false, "create the member if absent")
		name       = flag.String("name", "", "member name (with -create)")
		role       = flag.String("role", "", "role to assign: GUEST, STUDENT, TEACHER or ADMIN")
		issueToken = flag.Bool("issue-token", false, "issue a fresh API token")
	)
	flag.Parse()

	if err := run(*email, *create, *name, *role, *issueToken); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(email string, create bool, name, role string, issueToken bool) error {
	if email == "" {
		return fmt.Errorf("-email is required")
	}
	if !create && role == "" && !issueToken {
		return fmt.Errorf("nothing to do: pass -create, -role or -issue-token")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	repo := postgres.NewMemberRepository(conn)

	m, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// found
	case shared.IsNotFound(err) && create:
		m, err = createMember(ctx, repo, email, name)
		if err != nil {
			return err
		}
		fmt.Printf("created member %s (%s)\n", m.Email, m.ID)
	default:
		return err
	}

	if role != "" {
		if err := m.Promote(member.Role(strings.ToUpper(role))); err != nil {
			return err
		}
		if err := repo.Update(ctx, m); err != nil {
			return err
		}
		fmt.Printf("member %s is now %s\n", m.Email, m.Role)
	}

	if issueToken {
		token, err := issueAPIToken(ctx, repo, m)
		if err != nil {
			return err
		}
		// The secret is not recoverable afterwards, only its hash is stored.
		fmt.Printf("API token for %s (shown once):\n%s\n", m.Email, token)
	}

	return nil
}

func createMember(ctx context.Context, repo member.Repository, email, name string) (*member.Member, error) {
	if name == "" {
		return nil, fmt.Errorf("-name is required with -create")
	}

	m, err := member.NewMember(member.NewMemberParams{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Provider: "admin-cli",
	})
	if err != nil {
		return nil, err
	}

	if err := repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// issueAPIToken generates an opaque token of the form "<memberID>.<secret>"
// and stores a bcrypt hash of the secret.
func issueAPIToken(ctx context.Context, repo member.Repository, m *member.Member) (string, error) {
	buf := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	secret := hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}

	m.SetAPITokenHash(string(hash))
	if err := repo.Update(ctx, m); err != nil {
		return "", err
	}

	return m.ID + "." + secret, nil
}
