package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/middleware"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/quiz"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

const goURL = "https://en.wikipedia.org/wiki/Go_(programming_language)"

func newTestServer(t *testing.T) (*Router, *httptest.Server) {
	t.Helper()
	rt := NewRouter(middleware.NewAuth("test-secret"))
	rt.users.cost = 4
	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)
	return rt, srv
}

// loggedIn registers and logs in through the real client.
func loggedIn(t *testing.T, srv *httptest.Server, email string) *client.Client {
	t.Helper()
	c := client.New(client.Options{BaseURL: srv.URL})
	ctx := context.Background()
	if _, err := c.Register(ctx, client.RegisterRequest{Username: strings.Split(email, "@")[0], Email: email, Password: "Secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resp, err := c.Login(ctx, client.LoginRequest{Email: email, Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	c.SetTokenSource(staticToken(resp.BearerToken()))
	return c
}

func TestToolsRecordHistory(t *testing.T) {
	_, srv := newTestServer(t)
	c := loggedIn(t, srv, "ada@example.com")
	ctx := context.Background()

	sum, err := c.Summarize(ctx, goURL)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Title != "Go (programming language)" || !strings.HasPrefix(sum.Summary, "Summary:") {
		t.Fatalf("unexpected summary %+v", sum)
	}
	tr, err := c.Translate(ctx, goURL, "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if tr.Heading() != "Go (programming language)" || !strings.Contains(tr.Translation, "Traduit en français") {
		t.Fatalf("unexpected translation %+v", tr)
	}

	hist, err := c.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].Action != models.ActionTranslation || hist[1].Action != models.ActionSummary {
		t.Fatalf("unexpected history %+v", hist)
	}

	other := loggedIn(t, srv, "bob@example.com")
	if h, err := other.History(ctx); err != nil || len(h) != 0 {
		t.Fatalf("history leaked across users: %v %+v", err, h)
	}
}

func TestInvalidURLReportedInBody(t *testing.T) {
	_, srv := newTestServer(t)
	c := loggedIn(t, srv, "ada@example.com")
	_, err := c.Summarize(context.Background(), "https://example.com/not-wiki")
	apiErr, ok := client.AsAPIError(err)
	if !ok || apiErr.Code != client.ErrorBadGateway || apiErr.Detail != "Invalid Wikipedia URL" {
		t.Fatalf("expected error field surfaced, got %v", err)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	_, srv := newTestServer(t)
	c := loggedIn(t, srv, "ada@example.com")
	ctx := context.Background()

	res, err := c.Quiz(ctx, goURL)
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	sess, err := quiz.Start(quiz.FromModels(res.Quiz.Quiz))
	if err != nil {
		t.Fatalf("generated quiz is invalid: %v", err)
	}
	// Answer the first two correctly and the last one wrong.
	for i := 0; i < sess.Len(); i++ {
		q := sess.Current()
		pick := q.CorrectAnswer
		if i == sess.Len()-1 {
			for _, o := range q.Options {
				if o != q.CorrectAnswer {
					pick = o
					break
				}
			}
		}
		if err := sess.SelectAnswer(pick); err != nil {
			t.Fatalf("SelectAnswer: %v", err)
		}
		if err := sess.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	local, _ := sess.Score()

	out, err := c.SubmitQuiz(ctx, sess.Submission(res.ArticleID))
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if out.CorrectAnswers != 2 || out.TotalQuestions != 3 || out.Status != "success" {
		t.Fatalf("unexpected submit result %+v", out)
	}
	if int(out.Score+0.5) != local {
		t.Fatalf("server score %.2f disagrees with local %d", out.Score, local)
	}

	attempts, err := c.QuizHistory(ctx)
	if err != nil || len(attempts) != 1 || attempts[0].ArticleID != res.ArticleID {
		t.Fatalf("unexpected quiz history %v %+v", err, attempts)
	}

	if _, err := c.SubmitQuiz(ctx, models.QuizSubmission{ArticleID: 999}); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPDFUploadAndExport(t *testing.T) {
	_, srv := newTestServer(t)
	c := loggedIn(t, srv, "ada@example.com")
	ctx := context.Background()

	res, err := c.SummarizePDF(ctx, client.Upload{Filename: "notes.pdf", Content: strings.NewReader("%PDF-1.4 some text")}, "es")
	if err != nil {
		t.Fatalf("SummarizePDF: %v", err)
	}
	if res.Filename != "notes.pdf" || res.TextLength == 0 || !strings.HasPrefix(res.Summary, "Resumen") {
		t.Fatalf("unexpected pdf summary %+v", res)
	}

	_, err = c.SummarizePDF(ctx, client.Upload{Filename: "notes.txt", Content: strings.NewReader("x")}, "en")
	if apiErr, ok := client.AsAPIError(err); !ok || apiErr.Status != http.StatusBadRequest || apiErr.Detail != "Only PDF files are supported" {
		t.Fatalf("expected 400 detail, got %v", err)
	}

	hist, err := c.History(ctx)
	if err != nil || len(hist) != 1 || hist[0].URL != "uploaded:notes.pdf" || hist[0].Action != models.ActionPDFSummary {
		t.Fatalf("unexpected history %v %+v", err, hist)
	}

	txt, err := c.Export(ctx, res.ArticleID, client.ExportTXT)
	if err != nil {
		t.Fatalf("Export txt: %v", err)
	}
	if txt.Filename != "notes.txt" || !bytes.HasPrefix(txt.Data, []byte("Title: notes.pdf\n\n")) {
		t.Fatalf("unexpected txt export %q %q", txt.Filename, txt.Data)
	}
	pdf, err := c.Export(ctx, res.ArticleID, client.ExportPDF)
	if err != nil {
		t.Fatalf("Export pdf: %v", err)
	}
	if pdf.ContentType != "application/pdf" || !bytes.HasPrefix(pdf.Data, []byte("%PDF-1.4")) || !bytes.Contains(pdf.Data, []byte("%%EOF")) {
		t.Fatalf("unexpected pdf export %q", pdf.ContentType)
	}
}

func TestAdminStatsRequiresAdmin(t *testing.T) {
	rt, srv := newTestServer(t)
	ctx := context.Background()
	c := loggedIn(t, srv, "ada@example.com")
	if _, err := c.Summarize(ctx, goURL); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if _, err := c.AdminStats(ctx); !errors.Is(err, client.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := rt.SeedUser("root", "root@example.com", "Secret123", true); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}
	admin := client.New(client.Options{BaseURL: srv.URL})
	resp, err := admin.Login(ctx, client.LoginRequest{Email: "root@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("admin Login: %v", err)
	}
	if !resp.User.IsAdmin {
		t.Fatalf("admin flag missing from login response")
	}
	admin.SetTokenSource(staticToken(resp.BearerToken()))
	st, err := admin.AdminStats(ctx)
	if err != nil {
		t.Fatalf("AdminStats: %v", err)
	}
	if st.TotalUsers != 2 || st.TotalArticles != 1 || st.TotalSummaries != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestUnauthenticatedAndBadLogin(t *testing.T) {
	_, srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/ai/history")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	var body map[string]string
	_ = json.NewDecoder(res.Body).Decode(&body)
	if res.StatusCode != http.StatusUnauthorized || body["detail"] != "Not authenticated" {
		t.Fatalf("unexpected response %d %v", res.StatusCode, body)
	}

	c := client.New(client.Options{BaseURL: srv.URL})
	_, err = c.Login(context.Background(), client.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	apiErr, ok := client.AsAPIError(err)
	if !ok || !errors.Is(err, client.ErrUnauthorized) || apiErr.Detail != "Incorrect email or password" {
		t.Fatalf("expected backend message, got %v", err)
	}
}
