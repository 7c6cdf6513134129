// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/wikismart/wikismart/internal/db"
	"github.com/wikismart/wikismart/internal/utils"
)

// Config holds the settings shared by the CLI, the bot and the devserver.
// Command-line flags override these after Load.
type Config struct {
	APIURL      string
	Timeout     time.Duration
	SessionPath string
	LangCode    string

	// devserver
	Addr          string
	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	// quizbot
	BotToken      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads the environment. It never requires a variable; use
// RequireBot before starting the Telegram front end.
func Load() (*Config, error) {
	sessionPath := os.Getenv("WIKISMART_SESSION_DB")
	if sessionPath == "" {
		p, err := db.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		sessionPath = p
	}
	return &Config{
		APIURL:        utils.SafeEnv("WIKISMART_API_URL", "http://localhost:8000"),
		Timeout:       utils.SafeEnvDuration("WIKISMART_TIMEOUT", 90*time.Second),
		SessionPath:   sessionPath,
		LangCode:      utils.DetermineLangCode(os.Getenv("WIKISMART_LANG"), os.Getenv("LANG")),
		Addr:          utils.SafeEnv("WIKISMART_ADDR", ":8000"),
		JWTSecret:     utils.SafeEnv("WIKISMART_JWT_SECRET", "wikismart-dev-secret"),
		AdminEmail:    os.Getenv("WIKISMART_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("WIKISMART_ADMIN_PASSWORD"),
		BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisAddr:     utils.SafeEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       utils.SafeEnvInt("REDIS_DB", 0),
	}, nil
}

// RequireBot checks the settings the Telegram front end cannot start without.
func (c *Config) RequireBot() error {
	if c.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if c.RedisAddr == "" {
		return errors.New("REDIS_ADDR environment variable is required")
	}
	return nil
}
