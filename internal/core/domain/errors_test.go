package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("VT-TEST-1000", "test message"),
			expected: "[VT-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("VT-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[VT-TEST-1001] test message: extra info",
		},
		{
			name:     "error with formatted details",
			err:      ErrDuplicateMetric.WithDetailsf("name %q", "http_requests_total"),
			expected: `[VT-MET-4090] duplicate metric: name "http_requests_total"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("VT-TEST-1000", "message 1")
	err2 := NewDomainError("VT-TEST-1000", "message 2") // Same code, different message
	err3 := NewDomainError("VT-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("VT-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("VT-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("VT-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
	if withDetails.Message != original.Message {
		t.Errorf("Message = %q, want %q", withDetails.Message, original.Message)
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("VT-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.WithCause(cause)

	if original.Cause != nil {
		t.Error("WithCause should not modify original error")
	}
	if !errors.Is(withCause, cause) {
		t.Errorf("errors.Is(withCause, cause) = false")
	}
	if withCause.Code != original.Code {
		t.Errorf("Code = %q, want %q", withCause.Code, original.Code)
	}
}

func TestDomainError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"VT-DATA-4040", http.StatusNotFound},
		{"VT-MET-4040", http.StatusNotFound},
		{"VT-DATA-4090", http.StatusConflict},
		{"VT-SYS-4290", http.StatusTooManyRequests},
		{"VT-SYS-4000", http.StatusBadRequest},
		{"VT-ARG-4001", http.StatusBadRequest},
		{"VT-ARG-4002", http.StatusBadRequest},
		{"VT-SYS-5030", http.StatusServiceUnavailable},
		{"VT-SYS-5000", http.StatusInternalServerError},
		{"VT-SYS-abcd", http.StatusInternalServerError},
		{"VT-SYS-42", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := NewDomainError(tt.code, "x").HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestAsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrMetricNotFound.WithDetails("x"))

	de, ok := AsDomainError(wrapped)
	if !ok {
		t.Fatal("AsDomainError should see through fmt wrapping")
	}
	if de.Code != "VT-MET-4040" || de.Details != "x" {
		t.Errorf("got %+v", de)
	}

	if _, ok := AsDomainError(fmt.Errorf("plain")); ok {
		t.Error("AsDomainError matched a plain error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrDuplicateMetric, "VT-MET-4090"},
		{ErrMetricNotFound, "VT-MET-4040"},
		{ErrInvalidArgument, "VT-ARG-4001"},
		{ErrMissingArgument, "VT-ARG-4002"},
		{ErrItemNotFound, "VT-DATA-4040"},
		{ErrItemValidation, "VT-DATA-4001"},
		{ErrItemConflict, "VT-DATA-4090"},
		{ErrItemQuotaExceeded, "VT-DATA-4290"},
		{ErrInternalServer, "VT-SYS-5000"},
		{ErrServiceUnavailable, "VT-SYS-5030"},
		{ErrBadRequest, "VT-SYS-4000"},
		{ErrRateLimited, "VT-SYS-4290"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Error code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := ErrDuplicateMetric.
		WithDetails("name: http_requests_total").
		WithCause(cause)

	if err.Code != "VT-MET-4090" {
		t.Errorf("Code = %q, want %q", err.Code, "VT-MET-4090")
	}
	if err.Details != "name: http_requests_total" {
		t.Errorf("Details = %q", err.Details)
	}
	if err.Cause != cause {
		t.Error("Cause should be preserved")
	}
	if !errors.Is(err, ErrDuplicateMetric) {
		t.Error("errors.Is should work after chaining")
	}
}
