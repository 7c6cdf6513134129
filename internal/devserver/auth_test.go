package devserver

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuth() (*AuthService, *memoryStore) {
	store := newMemoryStore()
	svc := NewAuthService(store, func(uid int, email string, isAdmin bool, ttl time.Duration) (string, error) {
		return fmt.Sprintf("token:%d:%s:%v", uid, email, isAdmin), nil
	})
	svc.cost = bcrypt.MinCost
	svc.now = func() time.Time { return time.Unix(0, 0) }
	return svc, store
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth()

	u, err := svc.Register("ada", "ada@example.com", "Secret123", false)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID == 0 || u.Username != "ada" {
		t.Fatalf("unexpected user %+v", u)
	}

	_, err = svc.Register("ada2", "ada@example.com", "Secret123", false)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict error on duplicate registration, got %v", err)
	}

	res, err := svc.Login("ada@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token != fmt.Sprintf("token:%d:ada@example.com:false", u.ID) {
		t.Fatalf("unexpected token %q", res.Token)
	}

	for _, c := range [][2]string{{"ada@example.com", "wrong-pass"}, {"missing@example.com", "Secret123"}} {
		_, err := svc.Login(c[0], c[1])
		if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
			t.Fatalf("login %v: expected unauthorized, got %v", c, err)
		}
	}
}

func TestAuthValidation(t *testing.T) {
	svc, store := newTestAuth()
	cases := [][3]string{
		{"", "a@example.com", "Secret123"},
		{"a", "not-an-email", "Secret123"},
		{"a", "a@example.com", "short"},
		{"a", "a@example.com", string(make([]byte, 73))},
	}
	for _, c := range cases {
		_, err := svc.Register(c[0], c[1], c[2], false)
		var se *ServiceError
		if !errors.As(err, &se) || se.Code != ErrorInvalid {
			t.Fatalf("register %q: expected invalid error, got %v", c[:2], err)
		}
	}
	if len(store.usersByEmail) != 0 {
		t.Fatalf("invalid registrations were stored")
	}
	if _, err := svc.Login("", ""); err == nil {
		t.Fatalf("expected validation error on login")
	}
}
