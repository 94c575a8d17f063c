package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "server message is preferred",
			status:   http.StatusUnauthorized,
			body:     `{"message":"Invalid username or password"}`,
			wantCode: ErrCodeAuthentication,
			wantMsg:  "Invalid username or password",
		},
		{
			name:     "error field is used when message is absent",
			status:   http.StatusConflict,
			body:     `{"error":"Username already taken"}`,
			wantCode: ErrCodeConflict,
			wantMsg:  "Username already taken",
		},
		{
			name:     "empty body falls back to a generic message",
			status:   http.StatusNotFound,
			body:     "",
			wantCode: ErrCodeNotFound,
			wantMsg:  "Resource not found",
		},
		{
			name:     "short plain text body is used",
			status:   http.StatusForbidden,
			body:     "Access denied",
			wantCode: ErrCodeForbidden,
			wantMsg:  "Access denied",
		},
		{
			name:     "html body is ignored",
			status:   http.StatusBadGateway,
			body:     "<html><body>bad gateway</body></html>",
			wantCode: ErrCodeInternal,
			wantMsg:  "The catalog API returned Bad Gateway.",
		},
		{
			name:     "bad request is validation",
			status:   http.StatusBadRequest,
			body:     `{"message":"Price must be positive"}`,
			wantCode: ErrCodeValidation,
			wantMsg:  "Price must be positive",
		},
		{
			name:     "gateway timeout",
			status:   http.StatusGatewayTimeout,
			body:     "",
			wantCode: ErrCodeTimeout,
			wantMsg:  "Request timed out. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(tt.status, []byte(tt.body))
			if err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", err.Code, tt.wantCode)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d, want %d", err.Status, tt.status)
			}
		})
	}
}

func TestFromResponse_FieldErrors(t *testing.T) {
	err := FromResponse(http.StatusBadRequest, []byte(`{"message":"Validation failed","errors":{"price":"must be >= 0"}}`))
	if err.Fields["price"] != "must be >= 0" {
		t.Fatalf("expected field errors, got %v", err.Fields)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestMapTransportError(t *testing.T) {
	expired := SessionExpired(errors.New("refresh failed"))

	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "context canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "deadline exceeded", err: fmt.Errorf("do: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
		{name: "client timeout", err: &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, wantCode: ErrCodeTimeout},
		{name: "connection refused", err: &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}, wantCode: ErrCodeNetwork},
		{name: "app error from transport", err: &url.Error{Op: "Get", URL: "http://x", Err: expired}, wantCode: ErrCodeSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapTransportError(tt.err)
			if GetCode(err) != tt.wantCode {
				t.Errorf("MapTransportError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}

	if MapTransportError(nil) != nil {
		t.Errorf("MapTransportError(nil) should be nil")
	}
}
