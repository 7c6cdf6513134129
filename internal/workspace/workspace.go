// Package workspace holds the three tool tabs (summary, translation, quiz)
// and the quiz attempt started from the latest generated quiz.
package workspace

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/quiz"
)

type API interface {
	Summarize(ctx context.Context, articleURL string) (*models.SummaryResult, error)
	Translate(ctx context.Context, articleURL, targetLang string) (*models.TranslationResult, error)
	Quiz(ctx context.Context, articleURL string) (*models.QuizResult, error)
	SummarizePDF(ctx context.Context, f client.Upload, langCode string) (*models.SummaryResult, error)
	TranslatePDF(ctx context.Context, f client.Upload, targetLang string) (*models.TranslationResult, error)
	QuizPDF(ctx context.Context, f client.Upload, langCode string) (*models.QuizResult, error)
	SubmitQuiz(ctx context.Context, sub models.QuizSubmission) (*models.QuizSubmitResult, error)
}

// Source is either a Wikipedia URL or an uploaded PDF, never both.
type Source struct {
	URL  string
	File *client.Upload
}

// isFile reports whether the source is an upload. The runners dispatch on
// it, so a validated source with a File always has content and a name.
func (s Source) isFile() bool {
	return s.File != nil
}

func (s Source) validate() error {
	hasURL := strings.TrimSpace(s.URL) != ""
	if s.isFile() {
		if s.File.Content == nil || strings.TrimSpace(s.File.Filename) == "" {
			return fmt.Errorf("%w: no file selected", ErrValidation)
		}
		if hasURL {
			return fmt.Errorf("%w: give either a URL or a PDF, not both", ErrValidation)
		}
		if !strings.EqualFold(pathExt(s.File.Filename), ".pdf") {
			return fmt.Errorf("%w: only PDF files are supported", ErrValidation)
		}
		return nil
	}
	if !hasURL {
		return fmt.Errorf("%w: URL is required", ErrValidation)
	}
	u, err := url.Parse(strings.TrimSpace(s.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrValidation, s.URL)
	}
	return nil
}

func pathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

type SummaryInput struct {
	Source
	LangCode string
}

type TranslationInput struct {
	Source
	TargetLang string
}

type QuizInput struct {
	Source
	LangCode string
}

type Workspace struct {
	Summary     *Tab[SummaryInput, *models.SummaryResult]
	Translation *Tab[TranslationInput, *models.TranslationResult]
	Quiz        *Tab[QuizInput, *models.QuizResult]

	api API

	mu        sync.Mutex
	attempt   *quiz.Session
	articleID int
}

func New(api API) *Workspace {
	w := &Workspace{api: api}
	w.Summary = NewTab("summary", func(in SummaryInput) error { return in.validate() }, w.runSummary)
	w.Translation = NewTab("translation", func(in TranslationInput) error { return in.validate() }, w.runTranslation)
	w.Quiz = NewTab("quiz", func(in QuizInput) error { return in.validate() }, w.runQuiz)
	return w
}

func (w *Workspace) runSummary(ctx context.Context, in SummaryInput) (*models.SummaryResult, error) {
	if in.isFile() {
		return w.api.SummarizePDF(ctx, *in.File, in.LangCode)
	}
	return w.api.Summarize(ctx, strings.TrimSpace(in.URL))
}

func (w *Workspace) runTranslation(ctx context.Context, in TranslationInput) (*models.TranslationResult, error) {
	if in.isFile() {
		return w.api.TranslatePDF(ctx, *in.File, in.TargetLang)
	}
	return w.api.Translate(ctx, strings.TrimSpace(in.URL), in.TargetLang)
}

// runQuiz fetches a quiz and starts a fresh attempt over it. A malformed
// quiz fails here, before anything is shown.
func (w *Workspace) runQuiz(ctx context.Context, in QuizInput) (*models.QuizResult, error) {
	var (
		res *models.QuizResult
		err error
	)
	if in.isFile() {
		res, err = w.api.QuizPDF(ctx, *in.File, in.LangCode)
	} else {
		res, err = w.api.Quiz(ctx, strings.TrimSpace(in.URL))
	}
	if err != nil {
		return nil, err
	}
	sess, err := quiz.Start(quiz.FromModels(res.Quiz.Quiz))
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.attempt = sess
	w.articleID = res.ArticleID
	w.mu.Unlock()
	return res, nil
}

// Attempt returns the engine for the latest quiz, or nil before any quiz.
func (w *Workspace) Attempt() *quiz.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempt
}

// SubmitAttempt records the finished attempt with the backend.
func (w *Workspace) SubmitAttempt(ctx context.Context) (*models.QuizSubmitResult, error) {
	w.mu.Lock()
	sess, articleID := w.attempt, w.articleID
	w.mu.Unlock()
	if sess == nil {
		return nil, fmt.Errorf("%w: no quiz loaded", ErrValidation)
	}
	if !sess.Finished() {
		return nil, quiz.ErrNotFinished
	}
	return w.api.SubmitQuiz(ctx, sess.Submission(articleID))
}

// RestartQuiz clears the attempt and the quiz tab so a new quiz can be
// generated.
func (w *Workspace) RestartQuiz() {
	w.mu.Lock()
	w.attempt = nil
	w.articleID = 0
	w.mu.Unlock()
	w.Quiz.Reset()
}

// RerunOptions carries the per-tool parameters a history entry lacks.
type RerunOptions struct {
	LangCode   string
	TargetLang string
}

// Rerun re-triggers a history entry on the tab matching its action.
// Uploaded PDFs are not kept by the client and cannot be rerun.
func (w *Workspace) Rerun(ctx context.Context, entry models.HistoryEntry, opts RerunOptions) error {
	if strings.HasPrefix(entry.URL, "uploaded:") {
		return fmt.Errorf("%w: %s was an uploaded PDF; upload it again", ErrValidation, entry.Title)
	}
	src := Source{URL: entry.URL}
	var err error
	switch entry.Action.Tool() {
	case models.ActionSummary:
		_, err = w.Summary.Submit(ctx, SummaryInput{Source: src, LangCode: opts.LangCode})
	case models.ActionTranslation:
		_, err = w.Translation.Submit(ctx, TranslationInput{Source: src, TargetLang: opts.TargetLang})
	case models.ActionQuiz:
		_, err = w.Quiz.Submit(ctx, QuizInput{Source: src, LangCode: opts.LangCode})
	default:
		err = fmt.Errorf("%w: unknown action %q", ErrValidation, entry.Action)
	}
	return err
}
