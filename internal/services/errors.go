package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/desertthunder/postx/internal/shared"
)

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	// KindClient is a request that could not be built or sent (bad payload, unreadable file).
	KindClient ErrorKind = iota
	// KindNetwork is a request that got no response.
	KindNetwork
	// KindServer is a response with a non-2xx status.
	KindServer
	// KindTimeout is a request that exceeded its per-call timeout.
	KindTimeout
	// KindCanceled is a request whose caller context was canceled.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// APIError is returned by every [APIService] call that fails.
type APIError struct {
	Kind    ErrorKind
	Op      string // what was being attempted, e.g. "request failed"
	Status  int    // HTTP status for KindServer
	Message string // server supplied message for KindServer
	Err     error
}

func (e *APIError) Error() string {
	if e.Kind == KindServer {
		if e.Message != "" {
			return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
		}
		return fmt.Sprintf("API error: status %d", e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *APIError) Unwrap() error { return e.Err }

// Is maps error kinds onto the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrNoResponse:
		return e.Kind == KindNetwork
	case shared.ErrTimeout:
		return e.Kind == KindTimeout
	case shared.ErrNotFound:
		return e.Kind == KindServer && e.Status == 404
	case shared.ErrInvalidInput:
		return e.Kind == KindClient
	}
	return false
}

// Describe converts any error into the single display string shown to users.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindServer:
			if apiErr.Message != "" {
				return apiErr.Message
			}
			return fmt.Sprintf("Server error: %d", apiErr.Status)
		case KindNetwork:
			return "No response from server. Please check your connection."
		case KindTimeout:
			return "Request timed out. Please try again."
		case KindCanceled:
			return "Request cancelled."
		}
		if apiErr.Err != nil {
			return "Error: " + apiErr.Err.Error()
		}
		return "Error: " + apiErr.Op
	}
	return "Error: " + err.Error()
}

func clientError(op string, err error) *APIError {
	return &APIError{Kind: KindClient, Op: op, Err: err}
}

// transportError classifies an error returned by [http.Client.Do].
func transportError(ctx context.Context, err error) *APIError {
	if errors.Is(err, context.Canceled) {
		return &APIError{Kind: KindCanceled, Op: "request canceled", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Op: "request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindTimeout, Op: "request timed out", Err: err}
	}
	return &APIError{Kind: KindNetwork, Op: "request failed", Err: err}
}

// serverError builds a KindServer error, taking the message from "error" or "detail" when present.
func serverError(status int, body []byte) *APIError {
	return &APIError{Kind: KindServer, Status: status, Message: extractMessage(body)}
}

func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg, ok := payload["error"].(string); ok && msg != "" {
		return msg
	}
	switch detail := payload["detail"].(type) {
	case string:
		return detail
	case []any:
		var msgs []string
		for _, d := range detail {
			if m, ok := d.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok {
					msgs = append(msgs, s)
				}
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
