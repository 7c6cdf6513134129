package devserver

import (
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	AddUser(u *User) error
}

type TokenSigner func(uid int, email string, isAdmin bool, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	signToken TokenSigner
	tokenTTL  time.Duration
	cost      int
}

type AuthResult struct {
	Token string
	User  *User
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		signToken: signer,
		tokenTTL:  30 * time.Minute,
		cost:      bcrypt.DefaultCost,
	}
}

func (s *AuthService) Register(username, email, password string, admin bool) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, NewInvalidError("Username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewInvalidError("value is not a valid email address")
	}
	if len(password) < 8 {
		return nil, NewInvalidError("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return nil, NewInvalidError("Password cannot exceed 72 characters")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("Email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &User{Username: username, Email: email, PassHash: hash, IsAdmin: admin, CreatedAt: s.now()}
	if err := s.store.AddUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("Incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("Incorrect email or password")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.IsAdmin, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
