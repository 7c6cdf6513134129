package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
	"github.com/wikismart/wikismart/internal/quiz"
	"github.com/wikismart/wikismart/internal/utils"
	"github.com/wikismart/wikismart/internal/views"
	"github.com/wikismart/wikismart/internal/workspace"
)

func newSummarizeCmd(get func() *app) *cobra.Command {
	var pdf string
	cmd := &cobra.Command{
		Use:   "summarize [wikipedia-url]",
		Short: "Summarize a Wikipedia article or a PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.signedIn(nav.ViewWorkspace, func(*models.Session) error {
				src, done, err := source(args, pdf)
				if err != nil {
					return err
				}
				defer done()
				res, err := a.ws.Summary.Submit(cmd.Context(), workspace.SummaryInput{Source: src, LangCode: a.cfg.LangCode})
				if err != nil {
					return err
				}
				views.Summary(a.out, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pdf, "pdf", "", "summarize this PDF file instead of a URL")
	return cmd
}

func newTranslateCmd(get func() *app) *cobra.Command {
	var pdf, to string
	cmd := &cobra.Command{
		Use:   "translate [wikipedia-url]",
		Short: "Translate a Wikipedia article or a PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.signedIn(nav.ViewWorkspace, func(*models.Session) error {
				src, done, err := source(args, pdf)
				if err != nil {
					return err
				}
				defer done()
				res, err := a.ws.Translation.Submit(cmd.Context(), workspace.TranslationInput{Source: src, TargetLang: targetLang(to, a.cfg.LangCode)})
				if err != nil {
					return err
				}
				views.Translation(a.out, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pdf, "pdf", "", "translate this PDF file instead of a URL")
	cmd.Flags().StringVar(&to, "to", "", "target language code or name (defaults to --lang)")
	return cmd
}

// targetLang keeps free-form names such as "German" and normalizes codes.
func targetLang(to, fallback string) string {
	if to == "" {
		return fallback
	}
	if utils.IsSupportedLang(to) {
		return utils.DetermineLangCode(to, "")
	}
	return to
}

func newQuizCmd(get func() *app) *cobra.Command {
	var (
		pdf      string
		noSubmit bool
	)
	cmd := &cobra.Command{
		Use:   "quiz [wikipedia-url]",
		Short: "Take a generated quiz on a Wikipedia article or a PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			return a.signedIn(nav.ViewWorkspace, func(*models.Session) error {
				src, done, err := source(args, pdf)
				if err != nil {
					return err
				}
				defer done()
				res, err := a.ws.Quiz.Submit(cmd.Context(), workspace.QuizInput{Source: src, LangCode: a.cfg.LangCode})
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Quiz: %s (%d questions)\n\n", res.Heading(), len(res.Quiz.Quiz))
				return a.takeQuiz(cmd, !noSubmit)
			})
		},
	}
	cmd.Flags().StringVar(&pdf, "pdf", "", "build the quiz from this PDF file instead of a URL")
	cmd.Flags().BoolVar(&noSubmit, "no-submit", false, "do not record the attempt with the backend")
	return cmd
}

// takeQuiz plays the workspace's current attempt on the terminal and
// optionally records it.
func (a *app) takeQuiz(cmd *cobra.Command, submit bool) error {
	sess := a.ws.Attempt()
	if err := a.play(sess); err != nil {
		return err
	}
	if !submit {
		return nil
	}
	res, err := a.ws.SubmitAttempt(cmd.Context())
	if err != nil {
		return fmt.Errorf("attempt not recorded: %w", err)
	}
	views.Submitted(a.out, res)
	return nil
}

func (a *app) play(sess *quiz.Session) error {
	for !sess.Finished() {
		views.Question(a.out, sess)
		opts := sess.Current().Options
		line, err := a.prompt("Your answer: ")
		if err != nil {
			return fmt.Errorf("quiz abandoned: %w", err)
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(opts) {
			fmt.Fprintf(a.out, "Pick a number between 1 and %d.\n\n", len(opts))
			continue
		}
		if err := sess.SelectAnswer(opts[n-1]); err != nil {
			return err
		}
		views.Reveal(a.out, sess)
		fmt.Fprintln(a.out)
		if err := sess.Advance(); err != nil {
			return err
		}
	}
	return views.Score(a.out, sess)
}
