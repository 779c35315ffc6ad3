package gateway

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"jobmate/board-client/internal/model"
)

// Claims are the fields of the session token the client cares about.
type Claims struct {
	UserID    string
	Role      model.Role
	ExpiresAt time.Time
}

// Session carries the bearer token. Signatures are never verified here;
// the authority does that on every request.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims Claims
	hooks  []func()
}

// NewSession parses token's claims. An empty token yields an anonymous
// session.
func NewSession(token string) (*Session, error) {
	s := &Session{}
	if token == "" {
		return s, nil
	}
	if err := s.SetToken(token); err != nil {
		return nil, err
	}
	return s, nil
}

func parseClaims(token string) (Claims, error) {
	parsed, _, err := gojwt.NewParser().ParseUnverified(token, gojwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("parse session token: %w", err)
	}
	mc := parsed.Claims.(gojwt.MapClaims)

	var c Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.UserID = sub
	}
	if c.UserID == "" {
		if id, ok := mc["userId"].(string); ok {
			c.UserID = id
		}
	}
	if role, ok := mc["role"].(string); ok {
		c.Role = model.Role(role)
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// SetToken replaces the token and its claims.
func (s *Session) SetToken(token string) error {
	c, err := parseClaims(token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.claims = c
	s.mu.Unlock()
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Claims() Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims
}

// UserID is the subject of the current token, or "".
func (s *Session) UserID() string { return s.Claims().UserID }

// IsAdmin reports whether the token carries the admin role.
func (s *Session) IsAdmin() bool { return s.Claims().Role == model.RoleAdmin }

// Active reports whether a token is held and not known to be expired.
func (s *Session) Active(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	return s.claims.ExpiresAt.IsZero() || now.Before(s.claims.ExpiresAt)
}

// OnInvalidate registers fn to run after every invalidation.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Invalidate drops the token and claims, then runs the hooks.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.claims = Claims{}
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()

	slog.Warn("session invalidated")
	for _, fn := range hooks {
		fn()
	}
}
