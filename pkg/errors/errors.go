package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a scraper error
type Kind string

const (
	// KindNetwork covers non-200 responses and body read failures
	KindNetwork Kind = "network"
	// KindParsing covers HTML parsing errors
	KindParsing Kind = "parsing"
	// KindRateLimit means the retailer throttled us
	KindRateLimit Kind = "rate_limit"
	// KindUnavailable means the retailer site itself is unreachable
	KindUnavailable Kind = "unavailable"
	// KindUnknownRetailer means the caller asked for a retailer that is not registered
	KindUnknownRetailer Kind = "unknown_retailer"
	// KindValidation represents invalid input
	KindValidation Kind = "validation"
	// KindConfiguration represents startup configuration errors
	KindConfiguration Kind = "configuration"
)

// ScraperError is the error type produced by the scraping subsystem
type ScraperError struct {
	Kind     Kind
	Retailer string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Kind, e.Retailer, e.Message, e.Err)
	}
	if e.Retailer != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Retailer, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *ScraperError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if re-running the whole search may succeed
func (e *ScraperError) IsRetryable() bool {
	switch e.Kind {
	case KindNetwork, KindUnavailable:
		return true
	default:
		return false
	}
}

// New creates a new ScraperError
func New(kind Kind, retailer, message string, err error) *ScraperError {
	return &ScraperError{
		Kind:     kind,
		Retailer: retailer,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewUnavailable creates an error for an unreachable retailer site
func NewUnavailable(retailer string, err error) *ScraperError {
	return New(KindUnavailable, retailer, "retailer is unavailable", err)
}

// NewRateLimit creates an error for a throttled retailer
func NewRateLimit(retailer string, duration time.Duration) *ScraperError {
	return New(KindRateLimit, retailer, fmt.Sprintf("rate limited for %v", duration), nil)
}

// NewParsing creates an HTML parsing error
func NewParsing(retailer, message string, err error) *ScraperError {
	return New(KindParsing, retailer, message, err)
}

// NewUnknownRetailer creates an error for an unregistered retailer key
func NewUnknownRetailer(key string) *ScraperError {
	return New(KindUnknownRetailer, key, "unknown retailer", nil)
}

// NewValidation creates an invalid-input error
func NewValidation(message string) *ScraperError {
	return New(KindValidation, "", message, nil)
}

// NewConfiguration creates a startup configuration error
func NewConfiguration(message string, err error) *ScraperError {
	return New(KindConfiguration, "", message, err)
}

// IsKind reports whether err is a ScraperError of the given kind
func IsKind(err error, kind Kind) bool {
	var se *ScraperError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// IsUnknownRetailer reports whether err signals an unregistered retailer key
func IsUnknownRetailer(err error) bool {
	return IsKind(err, KindUnknownRetailer)
}

// IsValidation reports whether err is an invalid-input error
func IsValidation(err error) bool {
	return IsKind(err, KindValidation)
}
