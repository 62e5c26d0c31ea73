// Package auth checks credentials against the usuarios table and keeps login
// sessions in Redis.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-management/internal/clinic"
	"github.com/hackgods/clinic-management/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

// Session is one authenticated user's login. It is passed explicitly; there
// is no process-wide current user.
type Session struct {
	Token     string      `json:"token"`
	User      clinic.User `json:"user"`
	StartedAt time.Time   `json:"started_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Authenticator struct {
	users clinic.UserRepository
	store Store
	mode  config.PasswordMode
	ttl   time.Duration
	now   func() time.Time
}

var _ clinic.Credentials = (*Authenticator)(nil)

func NewAuthenticator(users clinic.UserRepository, store Store, mode config.PasswordMode, ttl time.Duration) *Authenticator {
	return &Authenticator{
		users: users,
		store: store,
		mode:  mode,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Authenticate returns the active user matching username and password.
// Unknown users, wrong passwords and inactive accounts all yield
// ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*clinic.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		u   *clinic.User
		err error
	)
	switch a.mode {
	case config.PasswordBcrypt:
		u, err = a.users.GetActiveByUsername(ctx, username)
		if err == nil && bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			err = ErrInvalidCredentials
		}
	default:
		u, err = a.users.Authenticate(ctx, username, password)
	}

	switch {
	case err == nil:
	case errors.Is(err, clinic.ErrNotFound), errors.Is(err, ErrInvalidCredentials):
		log.Printf("login rejected username=%s", username)
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}

// Login authenticates and stores a new session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	s := &Session{
		Token:     uuid.NewString(),
		User:      *u,
		StartedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	if err := a.store.Save(ctx, s, a.ttl); err != nil {
		return nil, err
	}

	log.Printf("login ok user_id=%d username=%s role=%s", u.ID, u.Username, u.Role)
	return s, nil
}

// Session resolves a token issued by Login.
func (a *Authenticator) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	return a.store.Load(ctx, token)
}

// Logout ends the session. Unknown tokens are not an error.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.store.Delete(ctx, token)
}

// HashPassword produces the value stored in usuarios.password in bcrypt mode.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
