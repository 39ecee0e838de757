package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider implements Provider on top of the Firebase Auth client.
type FirebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider wraps a Firebase Auth client in the Provider contract.
func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	record, err := p.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("user %q: %w", uid, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user %q: %w", uid, err)
	}
	return fromFirebaseRecord(record), nil
}

func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("user with email %q: %w", email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %q: %w", email, err)
	}
	return fromFirebaseRecord(record), nil
}

func (p *FirebaseProvider) EnsureUID(ctx context.Context, uid, email string) (*UserRecord, error) {
	record, err := p.GetUser(ctx, uid)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	toCreate := (&auth.UserToCreate{}).UID(uid)
	if email != "" {
		toCreate = toCreate.Email(email)
	}
	created, err := p.client.CreateUser(ctx, toCreate)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", uid, err)
	}
	return fromFirebaseRecord(created), nil
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password string, emailVerified bool) (*UserRecord, error) {
	toCreate := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(emailVerified)
	record, err := p.client.CreateUser(ctx, toCreate)
	if err != nil {
		return nil, fmt.Errorf("failed to create user with email %q: %w", email, err)
	}
	return fromFirebaseRecord(record), nil
}

func (p *FirebaseProvider) UpdateUser(ctx context.Context, uid string, password *string) error {
	if password == nil {
		return nil
	}
	toUpdate := (&auth.UserToUpdate{}).Password(*password)
	if _, err := p.client.UpdateUser(ctx, uid, toUpdate); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("user %q: %w", uid, ErrUserNotFound)
		}
		return fmt.Errorf("failed to update user %q: %w", uid, err)
	}
	return nil
}

func (p *FirebaseProvider) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	if err := p.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("user %q: %w", uid, ErrUserNotFound)
		}
		return fmt.Errorf("failed to set custom claims for user %q: %w", uid, err)
	}
	return nil
}

func (p *FirebaseProvider) EnsureUser(ctx context.Context, email string, password *string) (*UserRecord, bool, error) {
	return ensureUser(ctx, p, email, password)
}

func fromFirebaseRecord(record *auth.UserRecord) *UserRecord {
	claims := make(map[string]any, len(record.CustomClaims))
	for key, value := range record.CustomClaims {
		claims[key] = value
	}
	return &UserRecord{UID: record.UID, Email: record.Email, CustomClaims: claims}
}
