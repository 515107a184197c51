package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Well-known endpoint paths.
const (
	PathLogin   = "/auth/login"
	PathRefresh = "/auth/refresh"
	PathHealth  = "/health"
)

// fallbackEligiblePrefixes lists the read paths the static fallback dataset
// can stand in for. A 404 under any of these is recoverable by the calling
// feature service.
var fallbackEligiblePrefixes = []string{
	"/categories",
	"/authors",
	"/articles",
	"/images",
	"/breaking-news",
	"/pages",
}

func fallbackEligible(path string) bool {
	for _, prefix := range fallbackEligiblePrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

type actionKind int

const (
	actionSucceed actionKind = iota
	actionRetryAfter
	actionRefreshAndRetry
	actionFail
)

// action is the controller's verdict for one completed attempt.
type action struct {
	kind    actionKind
	delay   time.Duration
	failure *APIError
}

// outboundCall carries the per-call retry state: the shared 5xx/network
// attempt budget and the one-shot 401 refresh marker.
type outboundCall struct {
	method    string
	path      string
	requestID string
	startedAt time.Time

	// attempts counts budget-consuming failures (5xx, network). 429 retries
	// do not count: the server explicitly asked for backoff.
	attempts int
	// refreshed marks that this call already spent its single
	// refresh-and-retry; a second 401 is terminal.
	refreshed bool
}

// retryPolicy is the tuning the classifier works against.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// classify decides what to do with a finished attempt. It mutates the
// call's retry state (attempt budget) as it decides.
//
// body is the already-drained response body; it is only consulted for
// failure messages.
func classify(call *outboundCall, resp *http.Response, body []byte, err error, policy retryPolicy) action {
	// No response at all: network error or per-attempt timeout.
	if err != nil || resp == nil {
		call.attempts++
		if call.attempts <= policy.maxRetries {
			return action{kind: actionRetryAfter, delay: retryDelay(policy.baseDelay, policy.maxDelay, call.attempts)}
		}
		return action{kind: actionFail, failure: &APIError{
			Kind:    KindExhausted,
			Message: fmt.Sprintf("request failed after %d attempts", call.attempts),
			Err:     &APIError{Kind: KindNetworkUnreachable, Message: "no response from server", Err: err},
		}}
	}

	status := resp.StatusCode

	switch {
	case status >= 200 && status < 300:
		return action{kind: actionSucceed}

	case status == http.StatusUnauthorized:
		if !call.refreshed {
			return action{kind: actionRefreshAndRetry}
		}
		return action{kind: actionFail, failure: &APIError{
			Kind:    KindSessionExpired,
			Status:  status,
			Message: "still unauthorized after credential refresh",
		}}

	case status == http.StatusForbidden:
		return action{kind: actionFail, failure: &APIError{
			Kind:    KindForbidden,
			Status:  status,
			Message: failureMessage(body, "access denied"),
		}}

	case status == http.StatusNotFound:
		return action{kind: actionFail, failure: &APIError{
			Kind:             KindNotFound,
			Status:           status,
			Message:          failureMessage(body, "resource not found"),
			FallbackEligible: fallbackEligible(call.path),
		}}

	case status == http.StatusTooManyRequests:
		// Retried unconditionally: the attempt ceiling does not apply when
		// the server explicitly asked us to back off.
		return action{kind: actionRetryAfter, delay: serverRetryAfter(resp)}

	case status >= 500:
		call.attempts++
		if call.attempts <= policy.maxRetries {
			return action{kind: actionRetryAfter, delay: retryDelay(policy.baseDelay, policy.maxDelay, call.attempts)}
		}
		return action{kind: actionFail, failure: &APIError{
			Kind:    KindExhausted,
			Status:  status,
			Message: fmt.Sprintf("server kept failing after %d attempts", call.attempts),
			Err:     &APIError{Kind: KindServerUnavailable, Status: status, Message: failureMessage(body, "server error")},
		}}

	default:
		// Remaining 4xx: the request itself is wrong, retrying won't help.
		return action{kind: actionFail, failure: &APIError{
			Kind:    KindRequestFailed,
			Status:  status,
			Message: failureMessage(body, http.StatusText(status)),
		}}
	}
}

// serverRetryAfter honors a Retry-After header given in seconds, falling
// back to a fixed default.
func serverRetryAfter(resp *http.Response) time.Duration {
	if v := strings.TrimSpace(resp.Header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultRetryAfter
}

// failureMessage pulls the envelope message out of an error body when there
// is one.
func failureMessage(body []byte, fallback string) string {
	if len(body) == 0 {
		return fallback
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && strings.TrimSpace(env.Message) != "" {
		return env.Message
	}
	return fallback
}
