// Package api is the client side of the storefront REST backend.
//
// Every call attaches the stored bearer token. A 401 tears the session
// down and fires the unauthorized hook. Calls are made at most once;
// callers own any "try again".
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ambikamber/ambikamber.com/internal/logging"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

const DefaultBaseURL = "http://localhost:5000/api"

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// UserMessage is the server's own wording, shown verbatim.
func (e *APIError) UserMessage() string { return e.Message }

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// MessageOr returns the server's message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type Observer interface {
	ObserveAPICall(method, route string, status int, took time.Duration)
}

type Client struct {
	baseURL        string
	http           *http.Client
	sessions       port.SessionStore
	onUnauthorized func(ctx context.Context)
	observer       Observer
	logger         *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithObserver(o Observer) Option       { return func(c *Client) { c.observer = o } }
func WithLogger(l *zap.Logger) Option      { return func(c *Client) { c.logger = l } }

// WithUnauthorizedHook runs after a 401 has cleared the session; it is
// where front ends send the user back to login.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, sessions port.SessionStore, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		sessions: sessions,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method      string
	path        string
	route       string
	query       url.Values
	body        any
	rawBody     io.Reader
	contentType string
}

type errorPayload struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, in call, out any) error {
	var body io.Reader
	contentType := "application/json"
	switch {
	case in.rawBody != nil:
		body = in.rawBody
		contentType = in.contentType
	case in.body != nil:
		data, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", in.route, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	authed := false
	if c.sessions != nil {
		sess, err := c.sessions.Load(ctx)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if sess != nil && sess.Token != "" {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
			authed = true
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(in, 0, start)
		c.logger.Warn("api call failed",
			zap.String("action", logging.ActionAPIFailed),
			zap.String("method", in.method),
			zap.String("route", in.route),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", in.method, in.route, err)
	}
	defer resp.Body.Close()
	c.observe(in, resp.StatusCode, start)

	c.logger.Debug("api call",
		zap.String("action", logging.ActionAPIRequest),
		zap.String("method", in.method),
		zap.String("route", in.route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload errorPayload
		if data, rerr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); rerr == nil && json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
		}
		// A 401 on an anonymous call (a wrong password) has no session to end.
		if resp.StatusCode == http.StatusUnauthorized && authed {
			c.teardown(ctx)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", in.route, err)
	}
	return nil
}

func (c *Client) teardown(ctx context.Context) {
	if c.sessions != nil {
		if err := c.sessions.Clear(ctx); err != nil {
			c.logger.Warn("clear session failed", zap.Error(err))
		} else {
			c.logger.Info("session cleared after 401", zap.String("action", logging.ActionSessionCleared))
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) observe(in call, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveAPICall(in.method, in.route, status, time.Since(start))
	}
}

func pageQuery(page int, search, status string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if search != "" {
		q.Set("search", search)
	}
	if status != "" {
		q.Set("status", status)
	}
	return q
}

var (
	_ port.AuthAPI    = (*Client)(nil)
	_ port.CatalogAPI = (*Client)(nil)
	_ port.CartAPI    = (*Client)(nil)
	_ port.OrdersAPI  = (*Client)(nil)
	_ port.PaymentAPI = (*Client)(nil)
	_ port.AdminAPI   = (*Client)(nil)
)
