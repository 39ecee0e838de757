package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryProvider is an in-process Provider used by tests and local runs.
type MemoryProvider struct {
	mu    sync.Mutex
	users map[string]*memoryUser
}

type memoryUser struct {
	uid      string
	email    string
	password string
	claims   map[string]any
}

// NewMemoryProvider creates an empty in-memory identity provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{users: make(map[string]*memoryUser)}
}

func (p *MemoryProvider) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[uid]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", uid, ErrUserNotFound)
	}
	return user.record(), nil
}

func (p *MemoryProvider) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user := p.findByEmailLocked(email)
	if user == nil {
		return nil, fmt.Errorf("user with email %q: %w", email, ErrUserNotFound)
	}
	return user.record(), nil
}

func (p *MemoryProvider) EnsureUID(ctx context.Context, uid, email string) (*UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[uid]
	if !ok {
		user = &memoryUser{uid: uid, email: email, claims: map[string]any{}}
		p.users[uid] = user
	}
	return user.record(), nil
}

func (p *MemoryProvider) CreateUser(ctx context.Context, email, password string, emailVerified bool) (*UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing := p.findByEmailLocked(email); existing != nil {
		return nil, fmt.Errorf("user with email %q already exists", email)
	}
	user := &memoryUser{
		uid:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		email:    email,
		password: password,
		claims:   map[string]any{},
	}
	p.users[user.uid] = user
	return user.record(), nil
}

func (p *MemoryProvider) UpdateUser(ctx context.Context, uid string, password *string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[uid]
	if !ok {
		return fmt.Errorf("user %q: %w", uid, ErrUserNotFound)
	}
	if password != nil {
		user.password = *password
	}
	return nil
}

func (p *MemoryProvider) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[uid]
	if !ok {
		return fmt.Errorf("user %q: %w", uid, ErrUserNotFound)
	}
	copied := make(map[string]any, len(claims))
	for key, value := range claims {
		copied[key] = value
	}
	user.claims = copied
	return nil
}

func (p *MemoryProvider) EnsureUser(ctx context.Context, email string, password *string) (*UserRecord, bool, error) {
	return ensureUser(ctx, p, email, password)
}

func (p *MemoryProvider) findByEmailLocked(email string) *memoryUser {
	lowered := strings.ToLower(email)
	for _, user := range p.users {
		if user.email != "" && strings.ToLower(user.email) == lowered {
			return user
		}
	}
	return nil
}

func (u *memoryUser) record() *UserRecord {
	claims := make(map[string]any, len(u.claims))
	for key, value := range u.claims {
		claims[key] = value
	}
	return &UserRecord{UID: u.uid, Email: u.email, CustomClaims: claims}
}
