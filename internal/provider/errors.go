package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownModel means a model or provider name is not in the table.
	ErrUnknownModel = errors.New("unknown model")
	// ErrBackendUnavailable means the chosen backend cannot be constructed,
	// usually because its API key is missing.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// StatusError is a non-2xx answer from a backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

// parseProviderError extracts a human-readable error from provider API responses.
func parseProviderError(providerName string, statusCode int, body []byte) *StatusError {
	se := &StatusError{Provider: providerName, StatusCode: statusCode}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		se.Message = errResp.Error.Message
		if se.Message == "" {
			se.Message = errResp.Message
		}
		if se.Message != "" {
			return se
		}
	}

	switch statusCode {
	case 401:
		se.Message = "authentication failed, check your API key"
	case 403:
		se.Message = "access denied, your API key may not have the required permissions"
	case 404:
		se.Message = "model or endpoint not found"
	case 429:
		se.Message = "rate limited, too many requests"
	case 500:
		se.Message = "internal server error on the provider side"
	case 502, 503:
		se.Message = "provider service temporarily unavailable"
	case 529:
		se.Message = "provider is overloaded, please try again later"
	default:
		s := string(body)
		if len(s) > 200 {
			s = s[:200] + "..."
		}
		se.Message = s
	}
	return se
}

// friendlyProviderError converts common network errors to user-friendly messages.
func friendlyProviderError(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused (is the service running?)"
	case strings.Contains(msg, "no such host"):
		return "host not found (check the URL)"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "connection timed out"
	case strings.Contains(msg, "EOF"):
		return "connection closed unexpectedly"
	case strings.Contains(msg, "reset by peer"):
		return "connection reset by server"
	}
	return msg
}
