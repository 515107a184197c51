// Package apiclient is the HTTP facade every feature service goes through.
// It composes three concerns around each call: sliding-window admission,
// credential lifecycle (proactive refresh, serialized refresh-on-401), and
// classified retry with exponential backoff. Feature services never see any
// of that; they get an envelope or a typed *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout is the fixed per-attempt deadline.
const DefaultTimeout = 30 * time.Second

// Options configures a Client. Zero values fall back to package defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client

	// Timeout is the per-attempt deadline; a timeout classifies as a
	// no-response network error.
	Timeout time.Duration

	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	RateLimitWindow  time.Duration
	RateLimitCeiling int

	RefreshThreshold time.Duration

	// Store holds auth_token and user_data. Defaults to an in-memory store.
	Store SessionStore

	// OnSessionExpired fires once per expired session; callers typically
	// redirect to the login entry point here.
	OnSessionExpired func()

	Logger *logging.Logger
}

// Client is the HTTP facade. All fields are instance state so tests can run
// independent clients without shared globals.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	policy  retryPolicy

	gate   *admissionGate
	tokens *TokenManager
	logger *logging.Logger

	// sleep is swappable so tests can observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client from options.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	store := opts.Store
	if store == nil {
		store = NewMemorySessionStore()
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		timeout: timeout,
		policy: retryPolicy{
			maxRetries: maxRetries,
			baseDelay:  opts.RetryBaseDelay,
			maxDelay:   opts.RetryMaxDelay,
		},
		gate:   newAdmissionGate(opts.RateLimitWindow, opts.RateLimitCeiling),
		logger: opts.Logger,
		sleep:  sleepContext,
	}
	c.tokens = NewTokenManager(store, opts.RefreshThreshold, c.refreshCredential, opts.OnSessionExpired)
	return c
}

// Tokens exposes the credential manager for session bootstrapping code.
func (c *Client) Tokens() *TokenManager { return c.tokens }

// RequestOption mutates the outgoing request before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

// Verb methods. Every feature service call funnels through Do.

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do runs one logical call through the full admission → token → issue →
// classify loop. Retries re-enter the loop without a second admission
// check; the call already holds its window slot.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Envelope, error) {
	call := &outboundCall{
		method:    method,
		path:      path,
		requestID: uuid.New().String(),
		startedAt: time.Now(),
	}

	if err := c.gate.Admit(path); err != nil {
		if apiErr, ok := err.(*APIError); ok {
			apiErr.RequestID = call.requestID
		}
		c.logWarn("request denied by local rate limit",
			zap.String("request_id", call.requestID),
			zap.String("method", method),
			zap.String("path", path))
		return nil, err
	}

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = raw
	}

	for {
		env, act := c.attempt(ctx, call, payload, opts)

		switch act.kind {
		case actionSucceed:
			c.logDebug("request completed",
				zap.String("request_id", call.requestID),
				zap.String("method", method),
				zap.String("path", path),
				zap.Duration("duration", time.Since(call.startedAt)),
				zap.Int("attempts", call.attempts+1))
			return env, nil

		case actionRetryAfter:
			c.logDebug("retrying request",
				zap.String("request_id", call.requestID),
				zap.String("path", path),
				zap.Int("attempt", call.attempts),
				zap.Duration("delay", act.delay))
			if err := c.sleep(ctx, act.delay); err != nil {
				return nil, err
			}

		case actionRefreshAndRetry:
			call.refreshed = true
			c.logDebug("401 received, refreshing credential",
				zap.String("request_id", call.requestID),
				zap.String("path", path))
			if _, err := c.tokens.Refresh(ctx); err != nil {
				if apiErr, ok := err.(*APIError); ok {
					apiErr.RequestID = call.requestID
				}
				return nil, err
			}

		case actionFail:
			act.failure.RequestID = call.requestID
			if act.failure.Kind == KindSessionExpired {
				c.tokens.expireSession()
			}
			c.logWarn("request failed",
				zap.String("request_id", call.requestID),
				zap.String("method", method),
				zap.String("path", path),
				zap.String("kind", string(act.failure.Kind)),
				zap.Int("status", act.failure.Status),
				zap.Duration("duration", time.Since(call.startedAt)))
			return nil, act.failure
		}
	}
}

// attempt issues one HTTP attempt and classifies the outcome.
func (c *Client) attempt(ctx context.Context, call *outboundCall, payload []byte, opts []RequestOption) (*Envelope, action) {
	var token string
	if call.path != PathRefresh {
		t, err := c.tokens.EnsureFresh(ctx)
		if err != nil {
			// Proactive refresh failed terminally: the session is gone.
			apiErr, ok := err.(*APIError)
			if !ok {
				apiErr = &APIError{Kind: KindSessionExpired, Message: "credential refresh failed", Err: err}
			}
			return nil, action{kind: actionFail, failure: apiErr}
		}
		token = t
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, call.method, c.baseURL+call.path, reqBody)
	if err != nil {
		return nil, action{kind: actionFail, failure: &APIError{
			Kind:    KindRequestFailed,
			Message: fmt.Sprintf("build request: %v", err),
			Err:     err,
		}}
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", call.requestID)
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The parent context being done is the caller's cancellation, not a
		// transient network failure.
		if ctx.Err() != nil && attemptCtx.Err() != context.DeadlineExceeded {
			return nil, action{kind: actionFail, failure: &APIError{
				Kind:    KindNetworkUnreachable,
				Message: "request cancelled",
				Err:     ctx.Err(),
			}}
		}
		return nil, classify(call, nil, nil, err, c.policy)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logWarn("failed to close response body", zap.Error(closeErr))
	}
	if readErr != nil {
		return nil, classify(call, nil, nil, fmt.Errorf("read response body: %w", readErr), c.policy)
	}

	act := classify(call, resp, respBody, nil, c.policy)
	if act.kind != actionSucceed {
		return nil, act
	}

	env := &Envelope{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, env); err != nil {
			return nil, action{kind: actionFail, failure: &APIError{
				Kind:    KindRequestFailed,
				Status:  resp.StatusCode,
				Message: "response is not a valid envelope",
				Err:     err,
			}}
		}
	}
	if len(respBody) > 0 && !env.Success {
		return nil, action{kind: actionFail, failure: &APIError{
			Kind:    KindRequestFailed,
			Status:  resp.StatusCode,
			Message: failureMessage(respBody, "request rejected"),
		}}
	}
	if len(respBody) == 0 {
		env.Success = true
	}
	return env, act
}

// refreshCredential is the RefreshFunc wired into the token manager. It
// posts to the fixed refresh path with the current credential attached and
// expects the new one under data.token. No retry loop here: a failed
// refresh is terminal.
func (c *Client) refreshCredential(ctx context.Context) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+PathRefresh, nil)
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if current, ok := c.tokens.Credential(); ok && current != "" {
		req.Header.Set("Authorization", "Bearer "+current)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh rejected: status %d: %s", resp.StatusCode, failureMessage(respBody, "refresh failed"))
	}

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if !parsed.Success || strings.TrimSpace(parsed.Data.Token) == "" {
		return "", fmt.Errorf("refresh response carries no token")
	}

	c.logDebug("credential refreshed")
	return parsed.Data.Token, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) logDebug(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.Debug(msg, fields...)
	}
}

func (c *Client) logWarn(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.Warn(msg, fields...)
	}
}
