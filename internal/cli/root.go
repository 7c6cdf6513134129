package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikismart/wikismart/internal/config"
	"github.com/wikismart/wikismart/internal/utils"
)

type rootFlags struct {
	apiURL    string
	timeout   time.Duration
	lang      string
	sessionDB string
}

// NewRootCmd builds the command tree reading from in and writing to out.
func NewRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		flags rootFlags
		a     *app
	)
	root := &cobra.Command{
		Use:   "wikismart",
		Short: "Summaries, translations and quizzes from Wikipedia articles and PDFs",
		Long: `wikismart talks to a WikiSmart backend to summarize, translate or
quiz you on a Wikipedia article or an uploaded PDF, and keeps a
per-user history of what you processed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, flags)
			a, err = openApp(cfg, in, out)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "backend base URL (env WIKISMART_API_URL)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "request timeout (env WIKISMART_TIMEOUT)")
	pf.StringVar(&flags.lang, "lang", "", "language code for generated content: en, fr, ar, es (env WIKISMART_LANG)")
	pf.StringVar(&flags.sessionDB, "session-db", "", "session database path (env WIKISMART_SESSION_DB)")

	get := func() *app { return a }
	root.AddCommand(
		newLoginCmd(get),
		newRegisterCmd(get),
		newLogoutCmd(get),
		newWhoamiCmd(get),
		newSummarizeCmd(get),
		newTranslateCmd(get),
		newQuizCmd(get),
		newHistoryCmd(get),
		newQuizHistoryCmd(get),
		newExportCmd(get),
		newAdminCmd(get),
	)
	// Post-run hooks are skipped on error, so close from RunE itself.
	for _, c := range append(root.Commands(), root) {
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer func() {
				if a != nil {
					a.Close()
				}
			}()
			return run(cmd, args)
		}
	}
	return root
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f rootFlags) {
	pf := cmd.Flags()
	if pf.Changed("api-url") {
		cfg.APIURL = f.apiURL
	}
	if pf.Changed("timeout") && f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if pf.Changed("lang") {
		cfg.LangCode = utils.DetermineLangCode(f.lang, os.Getenv("LANG"))
	}
	if pf.Changed("session-db") {
		cfg.SessionPath = f.sessionDB
	}
}

// ExecuteContext runs the CLI on the process's standard streams.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
}
