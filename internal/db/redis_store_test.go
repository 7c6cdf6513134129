package db

import (
	"os"
	"testing"

	"github.com/wikismart/wikismart/internal/models"
)

func TestRedisSessionRoundTrip(t *testing.T) {
	addr := os.Getenv("WIKISMART_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WIKISMART_TEST_REDIS_ADDR not set")
	}
	rdb, err := ConnectRedis(addr, "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rdb.Close()

	store := NewRedisSessionStore(rdb, ChatSessionKey(-42))
	_ = store.Clear()
	if got, err := store.Load(); err != nil || got != nil {
		t.Fatalf("expected empty, got %+v err=%v", got, err)
	}
	sess := &models.Session{Token: "tok", User: models.User{ID: 9, Username: "bob", Email: "bob@example.com"}}
	if err := store.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load()
	if err != nil || got == nil || got.Token != "tok" || got.User != sess.User {
		t.Fatalf("unexpected session %+v err=%v", got, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func TestChatSessionKey(t *testing.T) {
	if got := ChatSessionKey(12345); got != "wikismart:session:chat:12345" {
		t.Fatalf("unexpected key %q", got)
	}
}
