// Package views renders workspace results, quiz steps, history and admin
// stats for a terminal.
package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/quiz"
)

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(title))))
}

func Summary(w io.Writer, r *models.SummaryResult) {
	heading(w, r.Heading())
	fmt.Fprintln(w, strings.TrimSpace(r.Summary))
	footer(w, r.ArticleID, r.TextLength)
}

func Translation(w io.Writer, r *models.TranslationResult) {
	title := r.Heading()
	if r.OriginalTitle != "" && r.OriginalTitle != title {
		title = fmt.Sprintf("%s (%s)", title, r.OriginalTitle)
	}
	heading(w, title)
	fmt.Fprintln(w, strings.TrimSpace(r.Translation))
	footer(w, r.ArticleID, r.TextLength)
}

func footer(w io.Writer, articleID, textLength int) {
	fmt.Fprintln(w)
	if textLength > 0 {
		fmt.Fprintf(w, "article %d, %d characters extracted\n", articleID, textLength)
		return
	}
	fmt.Fprintf(w, "article %d\n", articleID)
}

// Question prints the current question with numbered options. Once the
// answer is revealed the correct option is marked with "*" and the pick
// with ">".
func Question(w io.Writer, s *quiz.Session) {
	q := s.Current()
	fmt.Fprintf(w, "Question %d/%d: %s\n", s.Index()+1, s.Len(), q.Text)
	picked, _ := s.Selected(s.Index())
	for i, opt := range q.Options {
		mark := " "
		if s.Revealed() || s.Finished() {
			switch {
			case opt == q.CorrectAnswer:
				mark = "*"
			case opt == picked:
				mark = ">"
			}
		}
		fmt.Fprintf(w, " %s %d) %s\n", mark, i+1, opt)
	}
}

// Reveal prints feedback for the answer just selected.
func Reveal(w io.Writer, s *quiz.Session) {
	if s.LastCorrect() {
		fmt.Fprintln(w, "Correct!")
		return
	}
	fmt.Fprintf(w, "Wrong, the answer was: %s\n", s.Current().CorrectAnswer)
}

// Score prints the final result of a finished attempt.
func Score(w io.Writer, s *quiz.Session) error {
	pct, err := s.Score()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Score: %d%% (%d/%d correct)\n", pct, s.CorrectCount(), s.Len())
	return nil
}

func Submitted(w io.Writer, r *models.QuizSubmitResult) {
	fmt.Fprintf(w, "Attempt recorded: %.0f%% (%d/%d)", r.Score, r.CorrectAnswers, r.TotalQuestions)
	if !r.SubmittedAt.IsZero() {
		fmt.Fprintf(w, " at %s", r.SubmittedAt.Format(timeLayout))
	}
	fmt.Fprintln(w)
}
