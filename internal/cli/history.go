package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
	"github.com/wikismart/wikismart/internal/views"
	"github.com/wikismart/wikismart/internal/workspace"
)

func newHistoryCmd(get func() *app) *cobra.Command {
	var (
		asCSV bool
		rerun int
		to    string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List what you processed, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.signedIn(nav.ViewHistory, func(*models.Session) error {
				entries, err := a.api.History(cmd.Context())
				if err != nil {
					return err
				}
				if rerun > 0 {
					return a.rerun(cmd, entries, rerun, to)
				}
				if asCSV {
					b, err := views.HistoryCSV(entries)
					if err != nil {
						return err
					}
					_, err = a.out.Write(b)
					return err
				}
				return views.History(a.out, entries)
			})
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print CSV instead of a table")
	cmd.Flags().IntVar(&rerun, "rerun", 0, "run the tool of history entry ID again")
	cmd.Flags().StringVar(&to, "to", "", "target language when rerunning a translation")
	return cmd
}

func (a *app) rerun(cmd *cobra.Command, entries []models.HistoryEntry, id int, to string) error {
	var entry *models.HistoryEntry
	for i := range entries {
		if entries[i].ID == id {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("no history entry %d", id)
	}
	a.router.Navigate(nav.ViewWorkspace)
	opts := workspace.RerunOptions{LangCode: a.cfg.LangCode, TargetLang: targetLang(to, a.cfg.LangCode)}
	if err := a.ws.Rerun(cmd.Context(), *entry, opts); err != nil {
		return err
	}
	switch entry.Action.Tool() {
	case models.ActionSummary:
		res, _ := a.ws.Summary.Result()
		views.Summary(a.out, res)
	case models.ActionTranslation:
		res, _ := a.ws.Translation.Result()
		views.Translation(a.out, res)
	case models.ActionQuiz:
		return a.takeQuiz(cmd, true)
	}
	return nil
}

func newQuizHistoryCmd(get func() *app) *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "quiz-history",
		Short: "List your recorded quiz attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.signedIn(nav.ViewHistory, func(*models.Session) error {
				attempts, err := a.api.QuizHistory(cmd.Context())
				if err != nil {
					return err
				}
				if asCSV {
					b, err := views.QuizHistoryCSV(attempts)
					if err != nil {
						return err
					}
					_, err = a.out.Write(b)
					return err
				}
				return views.QuizHistory(a.out, attempts)
			})
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print CSV instead of a table")
	return cmd
}

func newExportCmd(get func() *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <article-id>",
		Short: "Download a processed article as txt or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("article id %q is not a number", args[0])
			}
			f, err := client.ParseExportFormat(format)
			if err != nil {
				return err
			}
			return a.signedIn(nav.ViewHistory, func(*models.Session) error {
				exp, err := a.api.Export(cmd.Context(), id, f)
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = exp.Filename
				}
				if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(exp.Data))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "txt", "txt or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (defaults to the server's filename)")
	return cmd
}

func newAdminCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Show platform statistics (admins only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.adminOnly(func(*models.Session) error {
				st, err := a.api.AdminStats(cmd.Context())
				if err != nil {
					return err
				}
				return views.AdminStats(a.out, st)
			})
		},
	}
}
