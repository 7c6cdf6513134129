// Package auth owns "who is logged in": it performs login and registration
// against the backend and keeps the resulting session in memory and in a
// durable store so the next start resumes it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/models"
)

// Store persists the session between runs. Load returns nil, nil when empty.
type Store interface {
	Load() (*models.Session, error)
	Save(s *models.Session) error
	Clear() error
}

type API interface {
	Login(ctx context.Context, in client.LoginRequest) (*client.LoginResponse, error)
	Register(ctx context.Context, in client.RegisterRequest) (*models.User, error)
}

var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type Credentials struct {
	Email    string
	Password string
}

type Profile struct {
	Username string
	Email    string
	Password string
}

type Service struct {
	api   API
	store Store
	now   func() time.Time

	mu      sync.RWMutex
	session *models.Session
}

// New rehydrates from store when it holds a session and starts signed out
// otherwise. A store that fails to load is logged and treated as empty.
func New(api API, store Store) *Service {
	s := &Service{
		api:   api,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	if store != nil {
		sess, err := store.Load()
		if err != nil {
			log.Printf("auth: cannot restore session: %v", err)
		} else if sess != nil && sess.Token != "" {
			s.session = sess
		}
	}
	return s
}

// Login replaces the current session on success. Backend errors are
// returned unchanged so callers can show their message.
func (s *Service) Login(ctx context.Context, c Credentials) (*models.Session, error) {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "email is required"}
	}
	if c.Password == "" {
		return nil, &ValidationError{Field: "password", Message: "password is required"}
	}
	resp, err := s.api.Login(ctx, client.LoginRequest{Email: email, Password: c.Password})
	if err != nil {
		return nil, err
	}
	sess := &models.Session{User: resp.User, Token: resp.BearerToken()}
	fillFromClaims(sess, email)

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(sess); err != nil {
			log.Printf("auth: session for %s kept in memory only: %v", sess.User.Email, err)
		}
	}
	out := *sess
	return &out, nil
}

// Register creates an account without signing in.
func (s *Service) Register(ctx context.Context, p Profile) (*models.User, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	return s.api.Register(ctx, client.RegisterRequest{
		Username: strings.TrimSpace(p.Username),
		Email:    strings.TrimSpace(p.Email),
		Password: p.Password,
	})
}

func validateProfile(p Profile) error {
	if strings.TrimSpace(p.Username) == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Message: fmt.Sprintf("invalid email address %q", email)}
	}
	// 72 bytes is the bcrypt input limit enforced by the backend.
	if len(p.Password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(p.Password) > 72 {
		return &ValidationError{Field: "password", Message: "password cannot exceed 72 characters"}
	}
	return nil
}

// Logout clears memory and the durable record. It never fails; storage
// errors are logged.
func (s *Service) Logout() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			log.Printf("auth: clear stored session: %v", err)
		}
	}
}

// ClearSession is invoked by the client's unauthorized policy.
func (s *Service) ClearSession() { s.Logout() }

// Current returns a copy of the live session, or nil when signed out or
// when the token's exp claim has passed.
func (s *Service) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || tokenExpired(s.session.Token, s.now()) {
		return nil
	}
	out := *s.session
	return &out
}

// Token implements client.TokenSource.
func (s *Service) Token() string {
	if sess := s.Current(); sess != nil {
		return sess.Token
	}
	return ""
}

// tokenExpired reads exp without verifying the signature; the backend stays
// the authority. Tokens that are not JWTs never expire client-side.
func tokenExpired(tok string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// fillFromClaims completes a profile the login response left partial.
func fillFromClaims(sess *models.Session, email string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err == nil {
		if sess.User.Email == "" {
			if sub, err := claims.GetSubject(); err == nil && strings.Contains(sub, "@") {
				sess.User.Email = sub
			}
		}
		if admin, ok := claims["is_admin"].(bool); ok && admin {
			sess.User.IsAdmin = true
		}
	}
	if sess.User.Email == "" {
		sess.User.Email = email
	}
	if sess.User.Username == "" {
		sess.User.Username = strings.SplitN(sess.User.Email, "@", 2)[0]
	}
}

var (
	_ client.TokenSource    = (*Service)(nil)
	_ client.SessionClearer = (*Service)(nil)
)
