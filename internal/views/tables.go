package views

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wikismart/wikismart/internal/models"
)

const timeLayout = "2006-01-02 15:04"

var actionLabels = map[models.Action]string{
	models.ActionSummary:        "Summary",
	models.ActionTranslation:    "Translation",
	models.ActionQuiz:           "Quiz",
	models.ActionPDFSummary:     "PDF summary",
	models.ActionPDFTranslation: "PDF translation",
	models.ActionPDFQuiz:        "PDF quiz",
}

// ActionLabel is the display name of an action; unknown actions print as-is.
func ActionLabel(a models.Action) string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

func stamp(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

// History prints entries newest first, in the order the backend returned.
func History(w io.Writer, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No history yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tACTION\tTITLE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, stamp(e.CreatedAt), ActionLabel(e.Action), e.Title, e.URL)
	}
	return tw.Flush()
}

func QuizHistory(w io.Writer, attempts []models.QuizAttempt) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No quiz attempts yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARTICLE\tSCORE\tSUBMITTED")
	for _, a := range attempts {
		fmt.Fprintf(tw, "%d\t%d\t%.0f%%\t%s\n", a.ID, a.ArticleID, a.Score, stamp(a.SubmittedAt))
	}
	return tw.Flush()
}

// AdminStats prints one card per counter.
func AdminStats(w io.Writer, s *models.AdminStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Users\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "Articles\t%d\n", s.TotalArticles)
	fmt.Fprintf(tw, "Summaries\t%d\n", s.TotalSummaries)
	fmt.Fprintf(tw, "Translations\t%d\n", s.TotalTranslations)
	fmt.Fprintf(tw, "Quiz attempts\t%d\n", s.TotalQuizAttempts)
	fmt.Fprintf(tw, "Average quiz score\t%.1f%%\n", s.AverageQuizScore)
	return tw.Flush()
}
