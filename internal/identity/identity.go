// Package identity abstracts the identity/claims provider the tenancy core
// mints accounts against. Production uses Firebase Auth; tests use the
// in-memory provider.
package identity

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by lookups when no matching user exists.
var ErrUserNotFound = errors.New("user not found")

// ErrPasswordRequired is returned by EnsureUser when the target account does
// not exist and no password was supplied to create it.
var ErrPasswordRequired = errors.New("cannot create an account without a password")

// UserRecord is the provider's view of one identity.
type UserRecord struct {
	UID          string
	Email        string
	CustomClaims map[string]any
}

// Provider is the identity/claims contract.
//
// SetCustomUserClaims replaces the entire claims map; partial claim updates
// are the caller's responsibility.
type Provider interface {
	GetUser(ctx context.Context, uid string) (*UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	// EnsureUID returns the user with the given uid, creating a bare
	// passwordless record when absent. Used to attach claims to an
	// already-known uid.
	EnsureUID(ctx context.Context, uid, email string) (*UserRecord, error)
	CreateUser(ctx context.Context, email, password string, emailVerified bool) (*UserRecord, error)
	// UpdateUser mutates the password only; a nil password is a no-op.
	UpdateUser(ctx context.Context, uid string, password *string) error
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error
	// EnsureUser reuses an existing account for the email (optionally
	// rotating its password) or creates a new one when a password was
	// supplied. The boolean reports whether the account was created.
	EnsureUser(ctx context.Context, email string, password *string) (*UserRecord, bool, error)
}

// ensureUser implements the shared EnsureUser flow on top of the primitive
// provider operations.
func ensureUser(ctx context.Context, p Provider, email string, password *string) (*UserRecord, bool, error) {
	record, err := p.GetUserByEmail(ctx, email)
	if err == nil {
		if password != nil && *password != "" {
			if err := p.UpdateUser(ctx, record.UID, password); err != nil {
				return nil, false, err
			}
		}
		return record, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}
	if password == nil || *password == "" {
		return nil, false, ErrPasswordRequired
	}
	record, err = p.CreateUser(ctx, email, *password, false)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}
