package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies an API failure into the remediation bucket the
// UI shows for it.
type ErrorKind int

const (
	// KindAuthExpired is a 401: the session is cleared and the user is
	// sent back to login. Never retried.
	KindAuthExpired ErrorKind = iota
	// KindRateLimited is a 429: the user is told to wait. No automatic
	// retry happens for any kind, but this one gets a distinct message.
	KindRateLimited
	// KindForbidden is a 403 permission failure.
	KindForbidden
	// KindValidation is a 400 with a server-provided message.
	KindValidation
	// KindNotFound is a 404.
	KindNotFound
	// KindServer is any 5xx, including 502/503/504 from a restarting
	// backend.
	KindServer
	// KindNetwork means no response was received at all.
	KindNetwork
	// KindTimeout means the fixed request deadline was exceeded.
	KindTimeout
	// KindEmptyArtifact is a zero-byte binary payload on a 2xx
	// response, treated identically to a download failure.
	KindEmptyArtifact
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthExpired:
		return "auth_expired"
	case KindRateLimited:
		return "rate_limited"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server_error"
	case KindNetwork:
		return "network_error"
	case KindTimeout:
		return "timeout"
	case KindEmptyArtifact:
		return "empty_artifact"
	default:
		return "unknown"
	}
}

// APIError is the typed failure every call returns on a non-2xx
// response, transport fault, or empty artifact.
type APIError struct {
	Kind    ErrorKind
	Status  int    // HTTP status, 0 for transport failures
	Message string // server-provided message when available
	cause   error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d", e.Kind, e.Status)
	}
	return e.Kind.String()
}

func (e *APIError) Unwrap() error { return e.cause }

// Remediation is the user-facing hint shown alongside the error.
// Network and timeout failures get different text because the fix is
// different: one is connectivity, the other a slow backend.
func (e *APIError) Remediation() string {
	switch e.Kind {
	case KindAuthExpired:
		return "Session expired. Please log in again."
	case KindRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case KindForbidden:
		return "You don't have permission to do that."
	case KindNotFound:
		return "The requested resource was not found."
	case KindServer:
		return "The server had a problem. It may be restarting; try again shortly."
	case KindNetwork:
		return "Could not reach the server. Check your connection and the configured base URL."
	case KindTimeout:
		return "The request timed out. The backend may be under load; try again."
	case KindEmptyArtifact:
		return "The server returned an empty file. Try generating it again."
	default:
		return "Please check your input and try again."
	}
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// errorEnvelope is the backend's JSON error body. Some endpoints use
// "error", others "message"; both are accepted.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (env errorEnvelope) text() string {
	if env.Error != "" {
		return env.Error
	}
	return env.Message
}

// classifyStatus maps a non-2xx response to the error taxonomy,
// extracting the server message from the body when it parses.
func classifyStatus(status int, body []byte) *APIError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := env.text()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}

	kind := KindServer
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuthExpired
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= 400 && status < 500:
		kind = KindValidation
	}

	return &APIError{Kind: kind, Status: status, Message: msg}
}
