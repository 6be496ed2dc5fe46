// Package client is a typed Go client for the library booking REST API. It
// injects the stored bearer token, unwraps the response envelope and turns
// failures into *APIError values.
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
)

const (
	// FallbackMessage is used when the server gives no message of its own
	FallbackMessage = "Something went wrong"

	LoginPath  = "/login"
	WalletPath = "/wallet"
)

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string
	Errors  json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// RedirectError tells the caller to navigate elsewhere instead of retrying
type RedirectError struct {
	Path    string
	Message string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s (go to %s)", e.Message, e.Path)
}

// IsStatus reports whether err is an *APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type Client struct {
	baseURL        string
	http           *http.Client
	store          TokenStore
	onUnauthorized func(path string)
	log            *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithOnUnauthorized sets the navigation hook called after a 401
func WithOnUnauthorized(fn func(path string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL, e.g. http://localhost:8080. A nil store
// keeps the token in memory.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if store == nil {
		store = NewMemoryStore()
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: 30 * time.Second},
		store:          store,
		onUnauthorized: func(string) {},
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a JSON request and decodes the envelope's data into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failure(resp.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		if errors.Is(decodeErr, io.EOF) && out == nil {
			return nil
		}
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// doRaw returns the body of a successful non-JSON response such as a PDF
func (c *Client) doRaw(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		decodeErr := json.NewDecoder(resp.Body).Decode(&env)
		return nil, c.failure(resp.StatusCode, env, decodeErr)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.store.Token()
	if err != nil {
		c.log.Warn("Failed to read stored token", zap.Error(err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: FallbackMessage + ": " + err.Error()}
	}
	return resp, nil
}

func (c *Client) failure(status int, env envelope, decodeErr error) error {
	message := env.Message
	if decodeErr != nil || strings.TrimSpace(message) == "" {
		message = FallbackMessage
	}

	switch status {
	case http.StatusUnauthorized:
		if err := c.store.Clear(); err != nil {
			c.log.Warn("Failed to clear stored token", zap.Error(err))
		}
		c.onUnauthorized(LoginPath)

	case http.StatusPaymentRequired:
		path := WalletPath
		var hint struct {
			RedirectTo string `json:"redirect_to"`
		}
		if len(env.Errors) > 0 && json.Unmarshal(env.Errors, &hint) == nil && hint.RedirectTo != "" {
			path = hint.RedirectTo
		}
		return &RedirectError{Path: path, Message: message}
	}

	return &APIError{Status: status, Message: message, Errors: env.Errors}
}
