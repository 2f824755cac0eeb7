package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/looper/internal/fault"
)

// Client submits scores to a Server over HTTP.
//
// Responses are classified for the sync queue:
//   - 2xx: accepted
//   - 4xx other than 408 and 429: fault.Rejected, never retried
//   - anything else, including transport errors: fault.Network, retried
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. "http://localhost:3001/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit sends one submission. It implements syncqueue.Submitter.
func (c *Client) Submit(ctx context.Context, token string, sub Submission) error {
	_, err := c.post(ctx, "/scores", token, sub)
	return err
}

// Health reports whether the server answers GET /health with 200.
func (c *Client) Health(ctx context.Context) error {
	const op = "submission.health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fault.Network(op, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fault.Network(op, fmt.Errorf("server answered %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, token string, v any) ([]byte, error) {
	op := "submission.post " + path

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fault.Network(op, fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return nil, fault.Network(op, fmt.Errorf("server answered %d", resp.StatusCode))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fault.Rejected(op, resp.StatusCode, errorMessage(body, resp.StatusCode))
	}
	return nil, fault.Network(op, fmt.Errorf("server answered %d: %s", resp.StatusCode, errorMessage(body, resp.StatusCode)))
}

func errorMessage(body []byte, status int) string {
	var v struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &v) == nil && v.Error != "" {
		return v.Error
	}
	return http.StatusText(status)
}
