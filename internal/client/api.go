package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/wikismart/wikismart/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse accepts both the OAuth2-style access_token and a bare token.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	Token       string      `json:"token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

func (r *LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	if out.BearerToken() == "" {
		return nil, &APIError{Method: http.MethodPost, Path: "/auth/login", Status: http.StatusOK, Code: ErrorBadGateway, Detail: "login response carried no token"}
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*models.User, error) {
	var out models.User
	if err := c.postJSON(ctx, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summarize(ctx context.Context, articleURL string) (*models.SummaryResult, error) {
	var out models.SummaryResult
	if err := c.getJSON(ctx, "/ai/summarize", url.Values{"url": {articleURL}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Translate(ctx context.Context, articleURL, targetLang string) (*models.TranslationResult, error) {
	q := url.Values{"url": {articleURL}}
	if targetLang != "" {
		q.Set("target_lang", targetLang)
	}
	var out models.TranslationResult
	if err := c.getJSON(ctx, "/ai/translate", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Quiz(ctx context.Context, articleURL string) (*models.QuizResult, error) {
	var out models.QuizResult
	if err := c.getJSON(ctx, "/ai/quiz", url.Values{"url": {articleURL}}, &out); err != nil {
		return nil, err
	}
	if err := checkQuiz(http.MethodGet, "/ai/quiz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func checkQuiz(method, path string, r *models.QuizResult) error {
	if r.Quiz.Error != "" {
		return &APIError{Method: method, Path: path, Status: http.StatusOK, Code: ErrorBadGateway, Detail: r.Quiz.Error}
	}
	return nil
}

func (c *Client) SubmitQuiz(ctx context.Context, sub models.QuizSubmission) (*models.QuizSubmitResult, error) {
	var out models.QuizSubmitResult
	if err := c.postJSON(ctx, "/ai/quiz/submit", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	if err := c.getJSON(ctx, "/ai/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) QuizHistory(ctx context.Context) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	if err := c.getJSON(ctx, "/ai/quiz/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var out models.AdminStats
	if err := c.getJSON(ctx, "/ai/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ExportFormat string

const (
	ExportTXT ExportFormat = "txt"
	ExportPDF ExportFormat = "pdf"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case ExportTXT:
		return ExportTXT, nil
	case ExportPDF:
		return ExportPDF, nil
	}
	return "", fmt.Errorf("%w: export format %q (want txt or pdf)", ErrInvalidArgument, s)
}

type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) Export(ctx context.Context, articleID int, format ExportFormat) (*Export, error) {
	if _, err := ParseExportFormat(string(format)); err != nil {
		return nil, err
	}
	if articleID <= 0 {
		return nil, fmt.Errorf("%w: article id %d", ErrInvalidArgument, articleID)
	}
	path := fmt.Sprintf("/ai/export/%d/%s", articleID, format)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	name := fmt.Sprintf("article-%d.%s", articleID, format)
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}
	return &Export{Filename: name, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}
