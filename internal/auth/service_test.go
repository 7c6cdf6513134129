package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
)

type stubStore struct {
	sess     *models.Session
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (s *stubStore) Load() (*models.Session, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.sess == nil {
		return nil, nil
	}
	copy := *s.sess
	return &copy, nil
}

func (s *stubStore) Save(sess *models.Session) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	copy := *sess
	s.sess = &copy
	return nil
}

func (s *stubStore) Clear() error {
	s.clears++
	s.sess = nil
	return s.clearErr
}

type stubAPI struct {
	loginResp  *client.LoginResponse
	loginErr   error
	registered []client.RegisterRequest
	logins     []client.LoginRequest
}

func (a *stubAPI) Login(ctx context.Context, in client.LoginRequest) (*client.LoginResponse, error) {
	a.logins = append(a.logins, in)
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return a.loginResp, nil
}

func (a *stubAPI) Register(ctx context.Context, in client.RegisterRequest) (*models.User, error) {
	a.registered = append(a.registered, in)
	return &models.User{ID: 11, Username: in.Username, Email: in.Email}, nil
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestLoginPersistsSession(t *testing.T) {
	store := &stubStore{}
	api := &stubAPI{loginResp: &client.LoginResponse{AccessToken: "tok", User: models.User{ID: 1, Username: "ada", Email: "ada@example.com"}}}
	svc := New(api, store)
	if svc.Current() != nil {
		t.Fatalf("expected signed out")
	}

	sess, err := svc.Login(context.Background(), Credentials{Email: " ada@example.com ", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sess.Token != "tok" || sess.User.Username != "ada" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if api.logins[0].Email != "ada@example.com" {
		t.Fatalf("email not trimmed: %q", api.logins[0].Email)
	}
	if store.sess == nil || store.sess.Token != "tok" {
		t.Fatalf("session not persisted: %+v", store.sess)
	}
	if svc.Token() != "tok" {
		t.Fatalf("unexpected token %q", svc.Token())
	}

	// A fresh service over the same store resumes the session.
	again := New(api, store)
	if cur := again.Current(); cur == nil || cur.User.Email != "ada@example.com" {
		t.Fatalf("session not rehydrated: %+v", cur)
	}
}

func TestLoginFailurePropagatesUnchanged(t *testing.T) {
	backendErr := &client.APIError{Status: http.StatusUnauthorized, Code: client.ErrorUnauthorized, Detail: "Incorrect email or password"}
	store := &stubStore{}
	svc := New(&stubAPI{loginErr: backendErr}, store)
	_, err := svc.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "wrong"})
	if err != backendErr {
		t.Fatalf("expected backend error unchanged, got %v", err)
	}
	if store.saves != 0 || svc.Current() != nil {
		t.Fatalf("failed login must not create a session")
	}
}

func TestLoginValidation(t *testing.T) {
	api := &stubAPI{}
	svc := New(api, nil)
	if _, err := svc.Login(context.Background(), Credentials{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Login(context.Background(), Credentials{Email: "a@b.c"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.logins) != 0 {
		t.Fatalf("invalid credentials must not reach the backend")
	}
}

func TestLoginFillsProfileFromClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "root@example.com", "is_admin": true, "exp": time.Now().Add(time.Hour).Unix()})
	svc := New(&stubAPI{loginResp: &client.LoginResponse{Token: tok}}, &stubStore{})
	sess, err := svc.Login(context.Background(), Credentials{Email: "root@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if sess.User.Email != "root@example.com" || !sess.User.IsAdmin || sess.User.Username != "root" {
		t.Fatalf("unexpected profile %+v", sess.User)
	}
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	api := &stubAPI{}
	store := &stubStore{}
	svc := New(api, store)
	u, err := svc.Register(context.Background(), Profile{Username: "ada", Email: "ada@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID != 11 || len(api.registered) != 1 {
		t.Fatalf("unexpected register result %+v", u)
	}
	if svc.Current() != nil || store.saves != 0 || len(api.logins) != 0 {
		t.Fatalf("register must not sign in")
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		p     Profile
		field string
	}{
		{Profile{Email: "a@example.com", Password: "Secret123"}, "username"},
		{Profile{Username: "a", Password: "Secret123"}, "email"},
		{Profile{Username: "a", Email: "not-an-email", Password: "Secret123"}, "email"},
		{Profile{Username: "a", Email: "a@example.com", Password: "short"}, "password"},
		{Profile{Username: "a", Email: "a@example.com", Password: string(make([]byte, 73))}, "password"},
	}
	api := &stubAPI{}
	svc := New(api, nil)
	for _, c := range cases {
		_, err := svc.Register(context.Background(), c.p)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != c.field {
			t.Fatalf("profile %+v: expected %s validation error, got %v", c.p, c.field, err)
		}
	}
	if len(api.registered) != 0 {
		t.Fatalf("invalid profiles must not reach the backend")
	}
}

func TestLogoutNeverFails(t *testing.T) {
	store := &stubStore{sess: &models.Session{Token: "tok"}, clearErr: errors.New("disk full")}
	svc := New(&stubAPI{}, store)
	if svc.Current() == nil {
		t.Fatalf("expected rehydrated session")
	}
	svc.Logout()
	if svc.Current() != nil || svc.Token() != "" || store.clears != 1 {
		t.Fatalf("logout did not clear state")
	}
}

func TestBrokenStoreStartsSignedOut(t *testing.T) {
	svc := New(&stubAPI{}, &stubStore{loadErr: errors.New("corrupt")})
	if svc.Current() != nil {
		t.Fatalf("expected signed out")
	}
}

func TestExpiredTokenIsNoSession(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "ada@example.com", "exp": time.Now().Add(-time.Minute).Unix()})
	svc := New(&stubAPI{}, &stubStore{sess: &models.Session{Token: tok}})
	if svc.Current() != nil || svc.Token() != "" {
		t.Fatalf("expired token must not count as a session")
	}

	opaque := New(&stubAPI{}, &stubStore{sess: &models.Session{Token: "opaque-token"}})
	if opaque.Token() != "opaque-token" {
		t.Fatalf("non-JWT tokens must be kept")
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not authenticated"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := &stubStore{sess: &models.Session{Token: "stale", User: models.User{Email: "ada@example.com"}}}
	c := client.New(client.Options{BaseURL: srv.URL})
	svc := New(c, store)
	c.SetTokenSource(svc)
	router := nav.NewRouter(nav.ViewWorkspace)
	c.OnUnauthorized(client.NewUnauthorizedPolicy(svc, router))

	if _, err := c.History(context.Background()); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if svc.Current() != nil || store.sess != nil {
		t.Fatalf("session survived a 401")
	}
	if router.Current() != nav.ViewLogin {
		t.Fatalf("expected redirect to login, at %s", router.Current())
	}
}
