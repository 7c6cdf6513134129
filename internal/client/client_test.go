package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
)

type stubSession struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (s *stubSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *stubSession) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cleared++
}

func newTestClient(t *testing.T, h http.HandlerFunc, sess *stubSession, router *nav.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL + "/", Tokens: sess})
	if router != nil {
		c.OnUnauthorized(NewUnauthorizedPolicy(sess, router))
	}
	return c
}

func TestBearerHeaderAndRequestID(t *testing.T) {
	var gotAuth, gotRID, gotQuery string
	sess := &stubSession{token: "tok-1"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.Query().Get("url")
		_ = json.NewEncoder(w).Encode(map[string]any{"article_id": 4, "title": "Go", "summary": "A language."})
	}, sess, nil)

	res, err := c.Summarize(context.Background(), "https://en.wikipedia.org/wiki/Go")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected Authorization %q", gotAuth)
	}
	if gotRID == "" {
		t.Fatalf("expected X-Request-ID header")
	}
	if gotQuery != "https://en.wikipedia.org/wiki/Go" {
		t.Fatalf("unexpected url query %q", gotQuery)
	}
	if res.ArticleID != 4 || res.Heading() != "Go" || res.Summary != "A language." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNoTokenSendsUnauthenticated(t *testing.T) {
	var hadAuth bool
	var body map[string]string
	sess := &stubSession{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "jwt", "token_type": "bearer", "user": map[string]any{"id": 1, "username": "ada", "email": "ada@example.com"}})
	}, sess, nil)

	res, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if hadAuth {
		t.Fatalf("login must be sent without Authorization")
	}
	if body["email"] != "ada@example.com" || body["password"] != "Secret123" {
		t.Fatalf("unexpected body %v", body)
	}
	if res.BearerToken() != "jwt" || res.User.Username != "ada" {
		t.Fatalf("unexpected login response %+v", res)
	}
}

func TestUnauthorizedClearsAndRedirectsOnce(t *testing.T) {
	sess := &stubSession{token: "expired"}
	router := nav.NewRouter(nav.ViewWorkspace)
	var auths []string
	var mu sync.Mutex
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
	}, sess, router)

	_, err := c.History(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err.Error() != "Could not validate credentials" {
		t.Fatalf("detail not propagated: %q", err.Error())
	}
	if sess.cleared != 1 || router.Current() != nav.ViewLogin || router.Count(nav.ViewLogin) != 1 {
		t.Fatalf("expected cleared session and one redirect, cleared=%d visits=%v", sess.cleared, router.Visits())
	}

	// Already on the login view: no second navigation, no token sent.
	if _, err := c.QuizHistory(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if router.Count(nav.ViewLogin) != 1 {
		t.Fatalf("redirect repeated: %v", router.Visits())
	}
	if auths[1] != "" {
		t.Fatalf("token sent after it was cleared: %q", auths[1])
	}
}

func TestConcurrentUnauthorizedRedirectsOnce(t *testing.T) {
	sess := &stubSession{token: "expired"}
	router := nav.NewRouter(nav.ViewWorkspace)
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		http.Error(w, `{"detail":"expired"}`, http.StatusUnauthorized)
	}, sess, router)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 0 {
				_, errs[i] = c.History(context.Background())
			} else {
				_, errs[i] = c.AdminStats(context.Background())
			}
		}(i)
	}
	<-arrived
	<-arrived
	close(release)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("call %d: expected ErrUnauthorized, got %v", i, err)
		}
	}
	if got := router.Count(nav.ViewLogin); got != 1 {
		t.Fatalf("expected exactly one redirect, got %d", got)
	}
	if sess.Token() != "" {
		t.Fatalf("session not cleared")
	}
}

func TestErrorDetailShapes(t *testing.T) {
	cases := []struct {
		status int
		body   string
		code   ErrorCode
		want   string
	}{
		{http.StatusBadRequest, `{"detail":"Only PDF files are supported"}`, ErrorInvalid, "Only PDF files are supported"},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"},{"msg":"field required"}]}`, ErrorInvalid, "value is not a valid email address; field required"},
		{http.StatusForbidden, `{"detail":"Admins only"}`, ErrorForbidden, "Admins only"},
		{http.StatusInternalServerError, `boom`, ErrorUnavailable, "boom"},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, tc.body)
		}, &stubSession{}, nil)
		_, err := c.AdminStats(context.Background())
		ae, ok := AsAPIError(err)
		if !ok {
			t.Fatalf("status %d: expected APIError, got %v", tc.status, err)
		}
		if ae.Code != tc.code || ae.Error() != tc.want || ae.Status != tc.status {
			t.Fatalf("status %d: got code=%s msg=%q", tc.status, ae.Code, ae.Error())
		}
	}
}

func TestErrorFieldInSuccessfulResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ai/translate":
			_, _ = io.WriteString(w, `{"error":"Could not fetch article"}`)
		case "/ai/quiz":
			_, _ = io.WriteString(w, `{"title":"Go","quiz":{"error":"Quiz generation failed"}}`)
		}
	}, &stubSession{}, nil)

	_, err := c.Translate(context.Background(), "https://en.wikipedia.org/wiki/Nope", "French")
	if ae, ok := AsAPIError(err); !ok || ae.Code != ErrorBadGateway || ae.Detail != "Could not fetch article" {
		t.Fatalf("unexpected translate error %v", err)
	}
	_, err = c.Quiz(context.Background(), "https://en.wikipedia.org/wiki/Go")
	if ae, ok := AsAPIError(err); !ok || ae.Detail != "Quiz generation failed" {
		t.Fatalf("unexpected quiz error %v", err)
	}
}

func TestQuizDecodesNestedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"article_id":7,"title":"Go","quiz":{"quiz":[{"question":"Who?","options":["a","b"],"answer":"b"}]}}`)
	}, &stubSession{token: "t"}, nil)
	res, err := c.Quiz(context.Background(), "https://en.wikipedia.org/wiki/Go")
	if err != nil {
		t.Fatalf("Quiz returned error: %v", err)
	}
	if res.ArticleID != 7 || len(res.Quiz.Quiz) != 1 || res.Quiz.Quiz[0].Answer != "b" {
		t.Fatalf("unexpected quiz %+v", res)
	}
}

func TestMultipartUpload(t *testing.T) {
	var gotFile, gotName, gotLang, gotCT string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotFile, gotName = string(b), hdr.Filename
		gotLang = r.FormValue("lang_code")
		_ = json.NewEncoder(w).Encode(map[string]any{"article_id": 2, "filename": hdr.Filename, "summary": "s", "text_length": len(b)})
	}, &stubSession{token: "t"}, nil)

	res, err := c.SummarizePDF(context.Background(), Upload{Filename: "/tmp/notes.pdf", Content: strings.NewReader("%PDF-1.4")}, "fr")
	if err != nil {
		t.Fatalf("SummarizePDF returned error: %v", err)
	}
	if !strings.HasPrefix(gotCT, "multipart/form-data; boundary=") {
		t.Fatalf("unexpected content type %q", gotCT)
	}
	if gotFile != "%PDF-1.4" || gotName != "notes.pdf" || gotLang != "fr" {
		t.Fatalf("unexpected upload file=%q name=%q lang=%q", gotFile, gotName, gotLang)
	}
	if res.Heading() != "notes.pdf" || res.TextLength != 8 {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := c.QuizPDF(context.Background(), Upload{}, "en"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing file, got %v", err)
	}
}

func TestExport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/export/5/pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="Go.pdf"`)
		_, _ = w.Write([]byte("%PDF"))
	}, &stubSession{token: "t"}, nil)

	exp, err := c.Export(context.Background(), 5, ExportPDF)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if exp.Filename != "Go.pdf" || exp.ContentType != "application/pdf" || string(exp.Data) != "%PDF" {
		t.Fatalf("unexpected export %+v", exp)
	}
	if _, err := c.Export(context.Background(), 5, "docx"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSubmitQuiz(t *testing.T) {
	var got models.QuizSubmission
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ai/quiz/submit" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"score":50.0,"total_questions":2,"correct_answers":1,"submitted_at":"2025-05-01T09:00:00","status":"completed"}`)
	}, &stubSession{token: "t"}, nil)

	res, err := c.SubmitQuiz(context.Background(), models.QuizSubmission{ArticleID: 3, Answers: []models.QuizAnswer{{Question: "q", UserAnswer: "a"}}})
	if err != nil {
		t.Fatalf("SubmitQuiz returned error: %v", err)
	}
	if got.ArticleID != 3 || len(got.Answers) != 1 {
		t.Fatalf("unexpected submission %+v", got)
	}
	if res.Score != 50 || res.CorrectAnswers != 1 || res.SubmittedAt.IsZero() {
		t.Fatalf("unexpected result %+v", res)
	}
}
