package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// apiErrorBody covers the error shapes the catalog API returns.
type apiErrorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

// FromResponse maps a non-2xx API response to an AppError.
// The server's message is preferred over the generic one for the status.
func FromResponse(status int, body []byte) *AppError {
	msg, fields := parseErrorBody(body)

	appErr := &AppError{Status: status, Fields: fields}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		appErr.Code = ErrCodeValidation
		appErr.Message = fallback(msg, "The request was rejected as invalid.")
	case status == http.StatusUnauthorized:
		appErr.Code = ErrCodeAuthentication
		appErr.Message = fallback(msg, "Authentication required.")
	case status == http.StatusForbidden:
		appErr.Code = ErrCodeForbidden
		appErr.Message = fallback(msg, "You do not have permission to perform this action.")
	case status == http.StatusNotFound:
		appErr.Code = ErrCodeNotFound
		appErr.Message = fallback(msg, "Resource not found")
	case status == http.StatusConflict:
		appErr.Code = ErrCodeConflict
		appErr.Message = fallback(msg, "This value already exists. Please choose a different one.")
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		appErr.Code = ErrCodeTimeout
		appErr.Message = fallback(msg, "Request timed out. Please try again.")
	default:
		appErr.Code = ErrCodeInternal
		appErr.Message = fallback(msg, "The catalog API returned "+http.StatusText(status)+".")
	}
	return appErr
}

// MapTransportError maps an error returned by http.Client.Do to an AppError.
// AppErrors raised inside the transport chain are returned unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	}

	return Wrap(err, ErrCodeNetwork, "Could not reach the catalog API.")
}

func parseErrorBody(body []byte) (string, map[string]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}

	var parsed apiErrorBody
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		// Plain-text bodies are only trusted when short enough to be a message.
		if len(trimmed) <= 200 && !strings.HasPrefix(trimmed, "<") {
			return trimmed, nil
		}
		return "", nil
	}

	msg := strings.TrimSpace(parsed.Message)
	if msg == "" {
		msg = strings.TrimSpace(parsed.Error)
	}
	if len(parsed.Errors) == 0 {
		return msg, nil
	}
	return msg, parsed.Errors
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
