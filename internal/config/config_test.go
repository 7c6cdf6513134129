package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"WIKISMART_API_URL", "WIKISMART_TIMEOUT", "WIKISMART_SESSION_DB", "WIKISMART_LANG", "LANG", "WIKISMART_ADDR", "TELEGRAM_BOT_TOKEN", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" || cfg.Timeout != 90*time.Second || cfg.LangCode != "en" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !strings.HasSuffix(cfg.SessionPath, filepath.Join(".wikismart", "session.db")) {
		t.Fatalf("unexpected session path %q", cfg.SessionPath)
	}
	if err := cfg.RequireBot(); err == nil {
		t.Fatalf("expected missing bot token error")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WIKISMART_API_URL", "https://api.example.com")
	t.Setenv("WIKISMART_TIMEOUT", "30s")
	t.Setenv("WIKISMART_SESSION_DB", "/tmp/ws.db")
	t.Setenv("WIKISMART_LANG", "")
	t.Setenv("LANG", "ar_EG.UTF-8")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://api.example.com" || cfg.Timeout != 30*time.Second || cfg.SessionPath != "/tmp/ws.db" {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if cfg.LangCode != "ar" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected lang/redis db: %+v", cfg)
	}
	if err := cfg.RequireBot(); err != nil {
		t.Fatalf("RequireBot: %v", err)
	}
}
