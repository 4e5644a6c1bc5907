// Package domain defines the core domain models for vitals.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DomainError is an error with a stable code.
//
// Codes have the form VT-<AREA>-<NNNN>; NNNN/10 is the HTTP status the
// error maps to (4040 -> 404, 4001 -> 400, 5030 -> 503).
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code, so detailed copies
// still satisfy errors.Is(err, ErrItemNotFound).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// HTTPStatus derives the response status from the code suffix. Codes
// without a valid suffix map to 500.
func (e *DomainError) HTTPStatus() int {
	i := strings.LastIndexByte(e.Code, '-')
	if i < 0 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(e.Code[i+1:])
	if err != nil || n < 1000 || n > 5999 {
		return http.StatusInternalServerError
	}
	return n / 10
}

// AsDomainError finds the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ============================================================================
// Metric Errors (MET)
// ============================================================================

var (
	// ErrDuplicateMetric indicates a metric name is already registered
	// with a different shape (kind, help, labels or buckets).
	ErrDuplicateMetric = NewDomainError("VT-MET-4090", "duplicate metric")

	// ErrMetricNotFound indicates no metric is registered under the name.
	ErrMetricNotFound = NewDomainError("VT-MET-4040", "metric not found")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument, such as a negative
	// counter increment or a malformed bucket list.
	ErrInvalidArgument = NewDomainError("VT-ARG-4001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("VT-ARG-4002", "missing required argument")
)

// ============================================================================
// Data Errors (DATA)
// ============================================================================

var (
	// ErrItemNotFound indicates the requested data item does not exist.
	ErrItemNotFound = NewDomainError("VT-DATA-4040", "item not found")

	// ErrItemValidation indicates item payload validation failed.
	ErrItemValidation = NewDomainError("VT-DATA-4001", "item validation failed")

	// ErrItemConflict indicates an item with the same ID already exists.
	ErrItemConflict = NewDomainError("VT-DATA-4090", "item already exists")

	// ErrItemQuotaExceeded indicates the store holds its maximum number of items.
	ErrItemQuotaExceeded = NewDomainError("VT-DATA-4290", "item quota exceeded")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("VT-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("VT-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("VT-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("VT-SYS-4290", "too many requests")
)
