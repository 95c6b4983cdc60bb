// Package api is the HTTP JSON client for the dosewatch backend: supplement
// definitions, per-day dose logs, and the chat assistant. Every request
// carries the bearer token and is bounded by a fixed 10-second deadline.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

const maxResponseBytes = 1 << 20

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	token   string
	http    httpDoer
	log     *zap.Logger
}

func NewClient(baseURL, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// SetHTTPClient overrides the default HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: requestTimeout}
		return
	}
	c.http = client
}

// HasToken reports whether the client can make authenticated calls at all.
func (c *Client) HasToken() bool {
	return c.token != ""
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if !c.HasToken() {
		return ErrNoToken
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("read %s %s: %v", method, path, err)}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &Error{Kind: KindAuth, Status: resp.StatusCode, Message: remoteMessage(raw, resp.Status)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &Error{Kind: KindRemote, Status: resp.StatusCode, Message: remoteMessage(raw, resp.Status)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: fmt.Sprintf("decode %s %s: %v", method, path, err)}
	}
	return nil
}

func (c *Client) transportError(method, path string, err error) error {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	c.log.Warn("request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return &Error{Kind: kind, Message: err.Error()}
}

func remoteMessage(raw []byte, fallback string) string {
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" && len(msg) < 200 {
		return msg
	}
	return fallback
}
