package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-dashboard/internal/metrics"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies the bearer token from the persisted session. An empty
// string means the request goes out without an Authorization header and is
// expected to be rejected by the server.
type TokenSource interface {
	Token(ctx context.Context) string
}

// noAuthEndpoints never receive an Authorization header.
var noAuthEndpoints = map[string]struct{}{
	"/api/auth/login":      {},
	"/api/auth/register":   {},
	"/api/auth/mfa-verify": {},
}

// Client performs all HTTP calls against the hospital backend.
type Client struct {
	baseURL        string
	client         *http.Client
	tokens         TokenSource
	onAuthRejected func()
}

// NewClient creates a backend client.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// SetAuthRejectedHook registers the callback invoked on any 401 response. The
// session controller uses it to purge the persisted session.
func (c *Client) SetAuthRejectedHook(fn func()) {
	c.onAuthRejected = fn
}

// Do executes a JSON request and decodes the response into out (out may be
// nil). Responses outside 2xx are converted into the error taxonomy.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.execute(ctx, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DoBlob executes a request for a binary payload such as the CSV export and
// returns the raw bytes with the response content type.
func (c *Client) DoBlob(ctx context.Context, method, path string, query url.Values) ([]byte, string, error) {
	resp, err := c.execute(ctx, method, path, query, nil, "*/*")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, "", err
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func (c *Client) execute(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Response, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL = requestURL + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addAuth(ctx, req, path)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, path, 0, time.Since(start))
		return nil, fmt.Errorf("failed to execute request: %w: %w", err, ErrTransient)
	}
	metrics.ObserveRequest(method, path, resp.StatusCode, time.Since(start))

	return resp, nil
}

// addAuth attaches the bearer token unless the endpoint is on the
// unauthenticated allow-list. The path is compared with any query stripped.
func (c *Client) addAuth(ctx context.Context, req *http.Request, path string) {
	clean := path
	if i := strings.Index(clean, "?"); i >= 0 {
		clean = clean[:i]
	}
	if _, open := noAuthEndpoints[clean]; open {
		return
	}
	if token := c.tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := readDetail(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.AuthRejected()
		if c.onAuthRejected != nil {
			c.onAuthRejected()
		}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Str("path", resp.Request.URL.Path).
		Str("detail", detail).
		Msg("Backend rejected request")

	return &APIError{Status: resp.StatusCode, Detail: detail, kind: classify(resp.StatusCode)}
}

// readDetail extracts the FastAPI-style {"detail": "..."} message if present.
func readDetail(body io.Reader) string {
	blob, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(blob, &payload); err != nil || payload.Detail == "" {
		return strings.TrimSpace(string(blob))
	}
	return payload.Detail
}
