// Package client is the single outbound path to the WikiSmart backend. It
// attaches the bearer token, decodes backend errors and applies the global
// "session expired" policy on 401 responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wikismart/wikismart/internal/nav"
)

const DefaultTimeout = 90 * time.Second

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource reports the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// SessionClearer drops the in-memory and persisted session.
type SessionClearer interface {
	ClearSession()
}

type Client struct {
	baseURL   string
	http      HTTPClient
	tokens    TokenSource
	requestID func() string

	mu           sync.RWMutex
	unauthorized *UnauthorizedPolicy
}

type Options struct {
	BaseURL    string
	HTTPClient HTTPClient
	Timeout    time.Duration
	Tokens     TokenSource
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      hc,
		tokens:    opts.Tokens,
		requestID: uuid.NewString,
	}
}

// SetTokenSource wires the session owner after construction, since the auth
// service itself needs a client to log in.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthorized installs the policy run for every 401 response.
func (c *Client) OnUnauthorized(p *UnauthorizedPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = p
}

func (c *Client) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

// UnauthorizedPolicy clears the session and sends the user to the login
// view. Concurrent 401s navigate once; a 401 seen while already on the login
// view does not navigate again. Navigator.Navigate must update Current
// before returning.
type UnauthorizedPolicy struct {
	mu      sync.Mutex
	clearer SessionClearer
	nav     nav.Navigator
}

func NewUnauthorizedPolicy(clearer SessionClearer, n nav.Navigator) *UnauthorizedPolicy {
	return &UnauthorizedPolicy{clearer: clearer, nav: n}
}

// Handle reports whether it navigated.
func (p *UnauthorizedPolicy) Handle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clearer != nil {
		p.clearer.ClearSession()
	}
	if p.nav == nil || p.nav.Current() == nav.ViewLogin {
		return false
	}
	log.Printf("client: session rejected by backend, redirecting to %s", nav.ViewLogin)
	p.nav.Navigate(nav.ViewLogin)
	return true
}

func (c *Client) handleUnauthorized() {
	c.mu.RLock()
	p := c.unauthorized
	c.mu.RUnlock()
	if p != nil {
		p.Handle()
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-ID", c.requestID())
	return req, nil
}

// send executes req and turns non-2xx answers into *APIError. On 401 the
// unauthorized policy has already run when send returns.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{
		Method: req.Method,
		Path:   req.URL.Path,
		Status: resp.StatusCode,
		Code:   codeForStatus(resp.StatusCode),
		Detail: parseDetail(body),
	}
	log.Printf("client: %s %s -> %d in %v (request %s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond), req.Header.Get("X-Request-ID"))
	if apiErr.Code == ErrorUnauthorized {
		c.handleUnauthorized()
	}
	return nil, apiErr
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.decode(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.decode(req, out)
}

func (c *Client) decode(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	// The backend reports upstream failures (unreachable article, AI error)
	// as 200 with an "error" field.
	if len(body) > 0 && body[0] == '{' {
		var probe struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &probe) == nil && probe.Error != "" {
			return &APIError{Method: req.Method, Path: req.URL.Path, Status: resp.StatusCode, Code: ErrorBadGateway, Detail: probe.Error}
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
