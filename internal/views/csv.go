package views

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/wikismart/wikismart/internal/models"
)

func csvTime(t models.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// HistoryCSV renders history entries with a header row.
func HistoryCSV(entries []models.HistoryEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "created_at", "action", "title", "url"})
	for _, e := range entries {
		rec := []string{
			strconv.Itoa(e.ID),
			csvTime(e.CreatedAt),
			string(e.Action),
			e.Title,
			e.URL,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// QuizHistoryCSV renders quiz attempts with a header row.
func QuizHistoryCSV(attempts []models.QuizAttempt) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "article_id", "score", "submitted_at"})
	for _, a := range attempts {
		rec := []string{
			strconv.Itoa(a.ID),
			strconv.Itoa(a.ArticleID),
			strconv.FormatFloat(a.Score, 'f', -1, 64),
			csvTime(a.SubmittedAt),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
