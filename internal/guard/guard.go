// Package guard gates the protected views on the presence of a session.
package guard

import (
	"errors"

	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
)

var (
	ErrNoSession = errors.New("not signed in")
	ErrForbidden = errors.New("admin access required")
)

type SessionSource interface {
	Current() *models.Session
}

type Guard struct {
	sessions SessionSource
	nav      nav.Navigator
}

func New(sessions SessionSource, n nav.Navigator) *Guard {
	return &Guard{sessions: sessions, nav: n}
}

// Require runs render with the current session, or sends the user to the
// login view and returns ErrNoSession without rendering.
func (g *Guard) Require(render func(*models.Session) error) error {
	sess := g.sessions.Current()
	if sess == nil {
		g.nav.Navigate(nav.ViewLogin)
		return ErrNoSession
	}
	return render(sess)
}

// RequireAdmin additionally sends non-admins back to the workspace.
func (g *Guard) RequireAdmin(render func(*models.Session) error) error {
	return g.Require(func(sess *models.Session) error {
		if !sess.User.IsAdmin {
			g.nav.Navigate(nav.ViewWorkspace)
			return ErrForbidden
		}
		return render(sess)
	})
}
