package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNoSitemaps indicates that discovery found nothing to expand
	ErrNoSitemaps = errors.New("no sitemaps found")
	// ErrNoURLs indicates that neither sitemaps nor manual input produced page URLs
	ErrNoURLs = errors.New("no URLs to analyze")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// FetchError is a network-level failure while fetching robots.txt or a sitemap.
type FetchError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for URL '%s': %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Wrapped
}

// NewFetchError creates a new fetch error
func NewFetchError(url, reason string, wrapped error) *FetchError {
	return &FetchError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// ParseError reports malformed sitemap content. Format is the format the
// content was parsed as ("xml", "json").
type ParseError struct {
	URL     string
	Format  string
	Wrapped error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error for sitemap '%s': %v", e.Format, e.URL, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// NewParseError creates a new parse error
func NewParseError(url, format string, wrapped error) *ParseError {
	return &ParseError{
		URL:     url,
		Format:  format,
		Wrapped: wrapped,
	}
}

// HTTPError represents HTTP-related errors
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for URL '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}

// IsFetchError reports whether err is or wraps a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
