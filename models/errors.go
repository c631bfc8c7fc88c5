package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	// ErrCodeBrowserNotFound means no usable browser executable could be resolved.
	// It is fatal to a batch: zero items are processed.
	ErrCodeBrowserNotFound = "BROWSER_NOT_FOUND"
	ErrCodeBrowserLaunch   = "BROWSER_LAUNCH_FAILED"

	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeExtraction   = "EXTRACTION_FAILED"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeBatchRunning = "BATCH_RUNNING"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// IsPrecondition reports whether err is a browser precondition failure
// (no executable, or the executable could not be started).
func IsPrecondition(err error) bool {
	se, ok := AsScrapeError(err)
	if !ok {
		return false
	}
	return se.Code == ErrCodeBrowserNotFound || se.Code == ErrCodeBrowserLaunch
}

// AsScrapeError unwraps err to a *ScrapeError when one is in the chain.
func AsScrapeError(err error) (*ScrapeError, bool) {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
