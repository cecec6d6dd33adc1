// Package github provides a minimal client for the GitHub repository contents
// API: read a file with its blob SHA and write it back conditionally.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/pricelist-cli/internal/resilience"
)

var (
	// ErrNotFound is returned when the file (or repository) does not exist.
	ErrNotFound = eris.New("github: not found")
	// ErrConflict is returned when a write carries a stale blob SHA.
	ErrConflict = eris.New("github: sha conflict")
)

// Client defines the repository contents operations.
type Client interface {
	// GetFile reads path at the configured branch.
	GetFile(ctx context.Context, path string) (*File, error)
	// PutFile creates or updates path. sha must be the current blob SHA, or
	// empty to create the file. Returns the new blob SHA.
	PutFile(ctx context.Context, path string, content []byte, sha, message string) (string, error)
}

// File is a decoded repository file.
type File struct {
	Path    string
	SHA     string
	Content []byte
}

type contentsResponse struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithBranch sets the branch files are read from and committed to.
func WithBranch(branch string) Option {
	return func(c *httpClient) {
		c.branch = branch
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	token   string
	repo    string
	branch  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a contents client for repo ("owner/name").
func NewClient(token, repo string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		repo:    repo,
		branch:  "main",
		baseURL: "https://api.github.com",
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("github", "contents")
	}
	return c
}

func (c *httpClient) contentsURL(path string) string {
	escaped := make([]string, 0, 4)
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, strings.Join(escaped, "/"))
}

// do sends one request and returns the body of a 2xx response. Statuses
// mapped to sentinels are returned unwrapped so callers can test for them.
func (c *httpClient) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "github: rate limiter wait")
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, eris.Wrap(err, "github: create request")
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "github: request failed")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "github: read response body")
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusConflict, resp.StatusCode == http.StatusUnprocessableEntity:
			return nil, ErrConflict
		default:
			return nil, resilience.HTTPError(resp.StatusCode, "github: "+strings.ToLower(method)+" contents")
		}
	})
}

func (c *httpClient) GetFile(ctx context.Context, path string) (*File, error) {
	reqURL := c.contentsURL(path) + "?ref=" + url.QueryEscape(c.branch)

	data, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var cr contentsResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, eris.Wrap(err, "github: unmarshal contents")
	}
	if cr.Encoding != "" && cr.Encoding != "base64" {
		return nil, eris.Errorf("github: unsupported content encoding %q", cr.Encoding)
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return nil, eris.Wrap(err, "github: decode content")
	}
	return &File{Path: cr.Path, SHA: cr.SHA, Content: content}, nil
}

func (c *httpClient) PutFile(ctx context.Context, path string, content []byte, sha, message string) (string, error) {
	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  c.branch,
	})
	if err != nil {
		return "", eris.Wrap(err, "github: marshal put request")
	}

	data, err := c.do(ctx, http.MethodPut, c.contentsURL(path), payload)
	if err != nil {
		return "", err
	}

	var pr putResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", eris.Wrap(err, "github: unmarshal put response")
	}
	return pr.Content.SHA, nil
}
