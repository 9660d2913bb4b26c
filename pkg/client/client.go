// Package client talks to the roster REST API. It implements the same
// collaborator interfaces as pkg/store so an AssignmentWindow can run
// against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/logging"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

// Client is safe for concurrent use
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client authenticating with the configured API key
func New(cfg config.ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logging.New("client"),
		token:   cfg.APIKey,
	}
}

// WithHTTPClient replaces the underlying transport client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Login exchanges admin credentials for a token used by every later call.
// API keys only grant reads; mutations need this token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/admin/login", body, &out, false); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = out.AccessToken
	c.mu.Unlock()
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	ID      string `json:"id"`
}

// get and send unwrap the {"data": ...} envelope into out
func (c *Client) get(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, out, true)
}

func (c *Client) send(ctx context.Context, op, method, path string, body, out any) error {
	return c.do(ctx, op, method, path, body, out, true)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any, envelope bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &models.FetchError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &models.FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Str("path", path).Msg("request failed")
		return &models.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug().Str("op", op).Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).Msg("response")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.FetchError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	if envelope {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return &models.FetchError{Op: op, Status: resp.StatusCode, Message: "malformed response", Err: err}
		}
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &models.FetchError{Op: op, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func decodeError(op, path string, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &models.ValidationError{Field: body.Field, Message: msg}
	case http.StatusNotFound:
		if body.Kind == "" {
			return &models.NotFoundError{Kind: "resource", ID: path}
		}
		return &models.NotFoundError{Kind: body.Kind, ID: body.ID}
	default:
		return &models.FetchError{Op: op, Status: status, Message: msg}
	}
}

func month(m time.Month, year int) string {
	return fmt.Sprintf("%d/%d", int(m), year)
}

var esc = url.PathEscape
