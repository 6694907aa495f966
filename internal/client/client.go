// Package client talks to the assistant backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second

	chatPath  = "/api/chat"
	trainPath = "/train"
)

// ErrNullBody is wrapped in the TransportError returned for a JSON null body.
var ErrNullBody = errors.New("response body is null")

// TransportError reports a turn that never produced a readable reply:
// the request failed, timed out, or the body could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TrainResult is the body returned by GET /train.
type TrainResult struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	IntentsCount int    `json:"intents_count"`
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client calls the chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat posts message and returns the decoded reply. Any reply body that
// decodes is returned as-is, including ones whose status is not success.
func (c *Client) Chat(ctx context.Context, message string) (chat.Response, error) {
	payload, err := json.Marshal(chat.Request{Message: message})
	if err != nil {
		return chat.Response{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return chat.Response{}, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out chat.Response
	if err := c.do(req, &out); err != nil {
		return chat.Response{}, err
	}

	c.logger.Debug("chat reply received",
		zap.String("status", out.Status),
		zap.Int("length", len(out.Response)))
	return out, nil
}

// Train asks the backend to rebuild its knowledge from the website.
func (c *Client) Train(ctx context.Context) (TrainResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+trainPath, nil)
	if err != nil {
		return TrainResult{}, fmt.Errorf("create train request: %w", err)
	}

	var out TrainResult
	if err := c.do(req, &out); err != nil {
		return TrainResult{}, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	op := req.Method + " " + req.URL.Path

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		c.logger.Warn("null response", zap.String("op", op), zap.Int("status_code", resp.StatusCode))
		return &TransportError{Op: op, Err: fmt.Errorf("decode response (status %d): %w", resp.StatusCode, ErrNullBody)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("undecodable response",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err))
		return &TransportError{Op: op, Err: fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)}
	}
	return nil
}
