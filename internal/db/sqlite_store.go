// Package db persists the signed-in session so a restart resumes it.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wikismart/wikismart/internal/models"
)

// SQLiteSessionStore keeps at most one session row in a local SQLite file.
type SQLiteSessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultSessionPath is ~/.wikismart/session.db.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wikismart", "session.db"), nil
}

// OpenSQLiteSessionStore creates the parent directory and schema if needed.
func OpenSQLiteSessionStore(path string) (*SQLiteSessionStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cannot create data directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteSessionStore(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func NewSQLiteSessionStore(conn *sql.DB) (*SQLiteSessionStore, error) {
	if conn == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := conn.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if err := RunMigrations(conn); err != nil {
		return nil, err
	}
	return &SQLiteSessionStore{db: conn, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite session store: %s: %v", prefix, err)
	}
}

// Load returns nil when no session has been saved.
func (s *SQLiteSessionStore) Load() (*models.Session, error) {
	var (
		sess    models.Session
		isAdmin int64
	)
	err := s.db.QueryRow(`SELECT user_id, username, email, is_admin, token FROM session WHERE id = 1`).
		Scan(&sess.User.ID, &sess.User.Username, &sess.User.Email, &isAdmin, &sess.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logErr("load", err)
		return nil, err
	}
	sess.User.IsAdmin = isAdmin != 0
	return &sess, nil
}

func (s *SQLiteSessionStore) Save(sess *models.Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	_, err := s.db.Exec(`
		INSERT INTO session (id, user_id, username, email, is_admin, token, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			username = excluded.username,
			email = excluded.email,
			is_admin = excluded.is_admin,
			token = excluded.token,
			saved_at = excluded.saved_at`,
		sess.User.ID, sess.User.Username, sess.User.Email, boolToInt64(sess.User.IsAdmin), sess.Token, s.now().Format(time.RFC3339),
	)
	s.logErr("save", err)
	return err
}

func (s *SQLiteSessionStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session`)
	s.logErr("clear", err)
	return err
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
