// Package identity implements the sign-in provider. Sessions are opaque
// bearer tokens held in memory; users are keyed by email.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.IdentityProvider = (*MemoryProvider)(nil)

// Option configures the provider.
type Option func(*MemoryProvider)

// WithSessionTTL expires tokens after d. Zero disables expiry.
func WithSessionTTL(d time.Duration) Option {
	return func(p *MemoryProvider) {
		p.ttl = d
	}
}

// WithNow replaces the clock.
func WithNow(now func() time.Time) Option {
	return func(p *MemoryProvider) {
		p.now = now
	}
}

type session struct {
	userID    string
	expiresAt time.Time
}

// MemoryProvider keeps users and sessions in memory.
type MemoryProvider struct {
	mu       sync.RWMutex
	users    map[string]*domain.User // by ID
	byEmail  map[string]string       // email -> user ID
	sessions map[string]session      // token -> session
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewMemoryProvider creates an empty identity provider.
func NewMemoryProvider(log *logger.Logger, opts ...Option) *MemoryProvider {
	p := &MemoryProvider{
		users:    make(map[string]*domain.User),
		byEmail:  make(map[string]string),
		sessions: make(map[string]session),
		ttl:      24 * time.Hour,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignIn creates a session for the user with the given email, registering
// the user on first sign-in. The name is required.
func (p *MemoryProvider) SignIn(ctx context.Context, name, email string) (string, *domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return "", nil, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	if email != "" && !strings.Contains(email, "@") {
		return "", nil, fmt.Errorf("%w: malformed email %q", domain.ErrInvalid, email)
	}

	token, err := newToken()
	if err != nil {
		return "", nil, fmt.Errorf("creating session token: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var user *domain.User
	if id, ok := p.byEmail[email]; ok && email != "" {
		user = p.users[id]
		user.Name = name
	} else {
		user = &domain.User{ID: domain.NewID(), Name: name, Email: email}
		p.users[user.ID] = user
		if email != "" {
			p.byEmail[email] = user.ID
		}
	}
	user.SignedIn = now

	s := session{userID: user.ID}
	if p.ttl > 0 {
		s.expiresAt = now.Add(p.ttl)
	}
	p.sessions[token] = s

	p.log.Info("user signed in: %s (%s)", user.Name, user.ID)
	cp := *user
	return token, &cp, nil
}

// SignOut ends the session for token.
func (p *MemoryProvider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[token]
	if !ok {
		return domain.ErrUnauthenticated
	}
	delete(p.sessions, token)
	p.log.Info("user signed out: %s", s.userID)
	return nil
}

// CurrentUser resolves a token to its user.
func (p *MemoryProvider) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if !s.expiresAt.IsZero() && !p.now().Before(s.expiresAt) {
		delete(p.sessions, token)
		p.log.Debug("session expired for %s", s.userID)
		return nil, domain.ErrUnauthenticated
	}
	user, ok := p.users[s.userID]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	cp := *user
	return &cp, nil
}

func newToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
