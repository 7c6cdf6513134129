// Package devserver is an in-memory stand-in for the WikiSmart backend. It
// serves the same routes with deterministic canned outputs and is used by
// tests and local demos.
package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/wikismart/wikismart/internal/middleware"
	"github.com/wikismart/wikismart/internal/models"
)

const maxUpload = 10 << 20

type Router struct {
	store *memoryStore
	auth  *middleware.Auth
	users *AuthService
	now   func() time.Time
}

func NewRouter(auth *middleware.Auth) *Router {
	store := newMemoryStore()
	return &Router{
		store: store,
		auth:  auth,
		users: NewAuthService(store, auth.SignToken),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SeedUser creates an account directly, typically the admin for demos.
func (rt *Router) SeedUser(username, email, password string, admin bool) error {
	_, err := rt.users.Register(username, email, password, admin)
	return err
}

func (rt *Router) Register(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	mux.HandleFunc("/auth/login", rt.handleLogin)       // POST
	mux.HandleFunc("/auth/register", rt.handleRegister) // POST
	mux.Handle("/ai/summarize", authed(rt.handleSummarize))
	mux.Handle("/ai/translate", authed(rt.handleTranslate))
	mux.Handle("/ai/quiz", authed(rt.handleQuiz))
	mux.Handle("/ai/quiz/submit", authed(rt.handleSubmit))
	mux.Handle("/ai/quiz/history", authed(rt.handleQuizHistory))
	mux.Handle("/ai/history", authed(rt.handleHistory))
	mux.Handle("/ai/export/", authed(rt.handleExport)) // GET /ai/export/{id}/{format}
	mux.Handle("/ai/admin/stats", middleware.RequireAdmin(http.HandlerFunc(rt.handleStats)))
	mux.Handle("/upload/pdf/", authed(rt.handleUpload)) // POST /upload/pdf/{summarize,translate,quiz}
}

// Handler wraps mux with the middleware chain used by cmd/devserver.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	rt.Register(mux)
	return middleware.RequestLog(middleware.CORS(middleware.SecureHeaders(middleware.NoStore(
		middleware.LocaleMiddleware(rt.auth.WithAuth(mux))))))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		middleware.WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return false
	}
	return true
}

func owner(r *http.Request) *middleware.Claims {
	c, _ := middleware.ClaimsFromContext(r.Context())
	return c
}

func userJSON(u *User) models.User {
	return models.User{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}

// POST /auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	res, err := rt.users.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"access_token": res.Token, "token_type": "bearer", "user": userJSON(res.User)})
}

// POST /auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	u, err := rt.users.Register(req.Username, req.Email, req.Password, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"id": u.ID, "username": u.Username, "email": u.Email})
}

// sourceTitle validates ?url=. Failures are reported in a 200 body's
// "error" field, as the real ingestion step does.
func sourceTitle(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	raw := r.URL.Query().Get("url")
	title, err := articleTitle(raw)
	if err != nil {
		writeJSON(w, map[string]string{"error": err.Error()})
		return "", "", false
	}
	return raw, title, true
}

// GET /ai/summarize?url=
func (rt *Router) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	raw, title, ok := sourceTitle(w, r)
	if !ok {
		return
	}
	a := &Article{OwnerID: owner(r).UID, Title: title, URL: raw, Action: models.ActionSummary, Content: summarize(title, wikiLang(raw)), CreatedAt: rt.now()}
	rt.store.addArticle(a)
	writeJSON(w, models.SummaryResult{ArticleID: a.ID, Title: title, Summary: a.Content})
}

// GET /ai/translate?url=&target_lang=
func (rt *Router) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	raw, title, ok := sourceTitle(w, r)
	if !ok {
		return
	}
	target := r.URL.Query().Get("target_lang")
	if target == "" {
		target = "French"
	}
	a := &Article{OwnerID: owner(r).UID, Title: title, URL: raw, Action: models.ActionTranslation, Content: translate(title, target), CreatedAt: rt.now()}
	rt.store.addArticle(a)
	writeJSON(w, models.TranslationResult{ArticleID: a.ID, OriginalTitle: title, Translation: a.Content})
}

// GET /ai/quiz?url=
func (rt *Router) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	raw, title, ok := sourceTitle(w, r)
	if !ok {
		return
	}
	qs := generateQuiz(title, wikiLang(raw))
	a := &Article{OwnerID: owner(r).UID, Title: title, URL: raw, Action: models.ActionQuiz, Quiz: qs, Content: quizText(qs), CreatedAt: rt.now()}
	rt.store.addArticle(a)
	writeJSON(w, models.QuizResult{ArticleID: a.ID, Title: title, Quiz: models.QuizPayload{Quiz: qs}})
}

func quizText(qs []models.Question) string {
	var b strings.Builder
	for i, q := range qs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
		for _, o := range q.Options {
			fmt.Fprintf(&b, "   - %s\n", o)
		}
		fmt.Fprintf(&b, "   Answer: %s\n\n", q.Answer)
	}
	return b.String()
}

// POST /ai/quiz/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var sub models.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		middleware.WriteDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	c := owner(r)
	a := rt.store.getArticle(sub.ArticleID)
	if a == nil || a.OwnerID != c.UID || len(a.Quiz) == 0 {
		writeError(w, NewNotFoundError("Quiz not found"))
		return
	}
	answers := map[string]string{}
	for _, ans := range sub.Answers {
		answers[ans.Question] = ans.UserAnswer
	}
	correct := 0
	for _, q := range a.Quiz {
		if answers[q.Question] == q.Answer {
			correct++
		}
	}
	score := roundTo2(100 * float64(correct) / float64(len(a.Quiz)))
	at := &Attempt{OwnerID: c.UID, ArticleID: a.ID, Score: score, SubmittedAt: rt.now()}
	rt.store.addAttempt(at)
	writeJSON(w, models.QuizSubmitResult{
		Score:          score,
		TotalQuestions: len(a.Quiz),
		CorrectAnswers: correct,
		SubmittedAt:    models.Timestamp{Time: at.SubmittedAt},
		Status:         "success",
	})
}

// GET /ai/history
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	arts := rt.store.listArticles(owner(r).UID)
	out := make([]models.HistoryEntry, 0, len(arts))
	for _, a := range arts {
		out = append(out, models.HistoryEntry{ID: a.ID, Title: a.Title, Action: a.Action, URL: a.URL, CreatedAt: models.Timestamp{Time: a.CreatedAt}})
	}
	writeJSON(w, out)
}

// GET /ai/quiz/history
func (rt *Router) handleQuizHistory(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	ats := rt.store.listAttempts(owner(r).UID)
	out := make([]models.QuizAttempt, 0, len(ats))
	for _, a := range ats {
		out = append(out, models.QuizAttempt{ID: a.ID, ArticleID: a.ArticleID, Score: a.Score, SubmittedAt: models.Timestamp{Time: a.SubmittedAt}})
	}
	writeJSON(w, out)
}

// GET /ai/export/{id}/{format}
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/ai/export/"), "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		middleware.WriteDetail(w, http.StatusUnprocessableEntity, "article id must be an integer")
		return
	}
	a := rt.store.getArticle(id)
	if a == nil || a.OwnerID != owner(r).UID {
		writeError(w, NewNotFoundError("Article not found"))
		return
	}
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(a.Title, " ", "_")), ".pdf")
	switch parts[1] {
	case "txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.txt"`, base))
		_, _ = w.Write(exportTXT(a.Title, a.Content))
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, base))
		_, _ = w.Write(exportPDF(a.Title, a.Content))
	default:
		writeError(w, NewInvalidError("Format must be 'txt' or 'pdf'"))
	}
}

// GET /ai/admin/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, rt.store.stats())
}

// POST /upload/pdf/{summarize,translate,quiz}
func (rt *Router) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	tool := strings.TrimPrefix(r.URL.Path, "/upload/pdf/")
	if tool != "summarize" && tool != "translate" && tool != "quiz" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		middleware.WriteDetail(w, http.StatusUnprocessableEntity, "multipart form with a file field is required")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		middleware.WriteDetail(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	defer f.Close()
	if !strings.HasSuffix(strings.ToLower(hdr.Filename), ".pdf") {
		writeError(w, NewInvalidError("Only PDF files are supported"))
		return
	}
	body, err := io.ReadAll(f)
	if err != nil {
		writeError(w, err)
		return
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		writeError(w, NewInvalidError("No text could be extracted from the PDF"))
		return
	}
	a := &Article{OwnerID: owner(r).UID, Title: hdr.Filename, URL: "uploaded:" + hdr.Filename, CreatedAt: rt.now()}
	lang := r.FormValue("lang_code")
	if lang == "" {
		lang = middleware.LocaleFromContext(r.Context())
	}
	switch tool {
	case "summarize":
		a.Action, a.Content = models.ActionPDFSummary, summarize(hdr.Filename, lang)
		rt.store.addArticle(a)
		writeJSON(w, models.SummaryResult{ArticleID: a.ID, Filename: hdr.Filename, Summary: a.Content, TextLength: len(text)})
	case "translate":
		target := r.FormValue("target_lang")
		if target == "" {
			target = "French"
		}
		a.Action, a.Content = models.ActionPDFTranslation, translate(hdr.Filename, target)
		rt.store.addArticle(a)
		writeJSON(w, models.TranslationResult{ArticleID: a.ID, Filename: hdr.Filename, Translation: a.Content, TextLength: len(text)})
	case "quiz":
		a.Action, a.Quiz = models.ActionPDFQuiz, generateQuiz(strings.TrimSuffix(hdr.Filename, ".pdf"), lang)
		a.Content = quizText(a.Quiz)
		rt.store.addArticle(a)
		writeJSON(w, models.QuizResult{ArticleID: a.ID, Filename: hdr.Filename, Quiz: models.QuizPayload{Quiz: a.Quiz}, TextLength: len(text)})
	}
}
