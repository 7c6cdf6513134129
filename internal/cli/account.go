package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikismart/wikismart/internal/auth"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
)

func newLoginCmd(get func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			var err error
			if email == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}
			sess, err := a.auth.Login(cmd.Context(), auth.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			a.router.Navigate(nav.ViewWorkspace)
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", sess.User.Username, sess.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(get func() *app) *cobra.Command {
	var p auth.Profile
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not sign in)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			var err error
			if p.Password == "" {
				if p.Password, err = a.prompt("Password (8-72 characters): "); err != nil {
					return err
				}
			}
			u, err := a.auth.Register(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account %s created for %s. Run `wikismart login` to sign in.\n", u.Username, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&p.Username, "username", "u", "", "display name")
	cmd.Flags().StringVarP(&p.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&p.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			a.auth.Logout()
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.signedIn(nav.ViewWorkspace, func(s *models.Session) error {
				role := "user"
				if s.User.IsAdmin {
					role = "admin"
				}
				fmt.Fprintf(a.out, "%s <%s> (%s) against %s\n", s.User.Username, s.User.Email, role, a.cfg.APIURL)
				return nil
			})
		},
	}
}
