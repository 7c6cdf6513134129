// Package cli is the wikismart command line front end.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wikismart/wikismart/internal/auth"
	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/config"
	"github.com/wikismart/wikismart/internal/db"
	"github.com/wikismart/wikismart/internal/guard"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
	"github.com/wikismart/wikismart/internal/workspace"
)

// app is the object graph behind every command.
type app struct {
	cfg    *config.Config
	in     *bufio.Reader
	out    io.Writer
	closer io.Closer

	api    *client.Client
	auth   *auth.Service
	router *nav.Router
	guard  *guard.Guard
	ws     *workspace.Workspace
}

func openApp(cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	store, err := db.OpenSQLiteSessionStore(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("open session store %s: %w", cfg.SessionPath, err)
	}
	a := wire(cfg, store, in, out)
	a.closer = store
	return a, nil
}

func wire(cfg *config.Config, store auth.Store, in io.Reader, out io.Writer) *app {
	c := client.New(client.Options{BaseURL: cfg.APIURL, Timeout: cfg.Timeout})
	svc := auth.New(c, store)
	c.SetTokenSource(svc)

	start := nav.ViewWorkspace
	if svc.Current() == nil {
		start = nav.ViewLogin
	}
	router := nav.NewRouter(start)
	router.OnChange = func(from, to nav.View) {
		if to == nav.ViewLogin && from != nav.ViewLogin {
			fmt.Fprintln(out, "Your session has ended. Run `wikismart login` to sign in again.")
		}
	}
	c.OnUnauthorized(client.NewUnauthorizedPolicy(svc, router))

	return &app{
		cfg:    cfg,
		in:     bufio.NewReader(in),
		out:    out,
		api:    c,
		auth:   svc,
		router: router,
		guard:  guard.New(svc, router),
		ws:     workspace.New(c),
	}
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// signedIn runs fn behind the route guard after switching to view.
func (a *app) signedIn(view nav.View, fn func(*models.Session) error) error {
	err := a.guard.Require(func(s *models.Session) error {
		a.router.Navigate(view)
		return fn(s)
	})
	return explain(err)
}

func (a *app) adminOnly(fn func(*models.Session) error) error {
	err := a.guard.RequireAdmin(func(s *models.Session) error {
		a.router.Navigate(nav.ViewAdmin)
		return fn(s)
	})
	return explain(err)
}

func explain(err error) error {
	switch {
	case errors.Is(err, guard.ErrNoSession):
		return errors.New("not signed in; run `wikismart login` first")
	case errors.Is(err, guard.ErrForbidden):
		return errors.New("this command needs an admin account")
	case errors.Is(err, client.ErrUnauthorized):
		return errors.New("the backend rejected your session")
	}
	return err
}

// prompt prints label and reads one trimmed line.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return "", fmt.Errorf("no input for %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(line), nil
}

// source builds a workspace source from a URL argument or a --pdf path.
func source(args []string, pdfPath string) (workspace.Source, func(), error) {
	noop := func() {}
	if pdfPath == "" {
		var u string
		if len(args) > 0 {
			u = args[0]
		}
		return workspace.Source{URL: u}, noop, nil
	}
	if len(args) > 0 {
		return workspace.Source{}, noop, fmt.Errorf("%w: give either a URL or --pdf, not both", workspace.ErrValidation)
	}
	f, err := os.Open(pdfPath)
	if err != nil {
		return workspace.Source{}, noop, err
	}
	return workspace.Source{File: &client.Upload{Filename: filepath.Base(pdfPath), Content: f}}, func() { f.Close() }, nil
}
