package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure. The propagation rules differ per kind:
// RateLimited, Forbidden and Exhausted always surface to the caller,
// SessionExpired additionally fires the session-expired hook, and NotFound
// may be fallback-eligible, in which case the calling feature service (not
// this package) substitutes static data.
type Kind string

const (
	KindRateLimited        Kind = "RATE_LIMITED"
	KindSessionExpired     Kind = "SESSION_EXPIRED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindServerUnavailable  Kind = "SERVER_UNAVAILABLE"
	KindNetworkUnreachable Kind = "NETWORK_UNREACHABLE"
	KindExhausted          Kind = "EXHAUSTED"
	// KindRequestFailed covers plain 4xx rejections (validation failures and
	// the like) that are never retried and carry the server's message.
	KindRequestFailed Kind = "REQUEST_FAILED"
)

// APIError is returned for every classified request failure.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	// RequestID identifies the failing call for log correlation.
	RequestID string
	// FallbackEligible marks a NotFound on a path the fallback dataset can
	// stand in for.
	FallbackEligible bool
	Err              error
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, or "" for non-API errors.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Kind
	}
	return ""
}

// IsFallbackEligible reports whether a feature service may substitute
// fallback data for this failure.
func IsFallbackEligible(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.FallbackEligible
	}
	return false
}

// IsNetworkFailure reports whether the failure chain bottoms out in a
// no-response network error (including exhausted retries over one).
func IsNetworkFailure(err error) bool {
	for err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr == nil {
			return false
		}
		if apiErr.Kind == KindNetworkUnreachable {
			return true
		}
		err = apiErr.Err
	}
	return false
}
