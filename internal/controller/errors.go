package controller

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// Error types for outbound receiver communication

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a network-level failure reaching the
	// receiver (connection refused, timeout, unreachable host)
	ErrTypeTransport ErrorType = iota
	// ErrTypeRemote indicates the receiver answered with status >= 400
	ErrTypeRemote
	// ErrTypeParse indicates a malformed description or app-info document
	ErrTypeParse
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeRemote:
		return "Remote Protocol Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while driving a remote
// receiver. For ErrTypeRemote, StatusCode carries the status the receiver
// answered with.
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (ErrTypeRemote only)
	Err        error     // Underlying error (if any)
	Location   string    // Receiver URL the call targeted (for context)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	if e.Type == ErrTypeRemote {
		return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewTransportError classifies a network failure against a receiver URL.
// Timeouts and refused connections are retryable; DNS failures are not.
func NewTransportError(location string, err error) *DeviceError {
	retryable := true

	// Unwrap url.Errors so classification sees the network cause.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	message := "Failed to reach receiver"
	switch {
	case os.IsTimeout(err):
		message = "Request timed out"
	case isDNSError(err):
		message = "DNS resolution failed"
		retryable = false
	case errors.Is(err, syscall.ECONNREFUSED):
		message = "Receiver refused connection"
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		message = "Receiver unreachable"
	}

	return &DeviceError{
		Type:      ErrTypeTransport,
		Message:   message,
		Err:       err,
		Location:  location,
		Retryable: retryable,
	}
}

// NewRemoteError creates an error carrying the receiver's failure status
func NewRemoteError(location string, statusCode int, message string) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeRemote,
		Message:    message,
		StatusCode: statusCode,
		Location:   location,
		Retryable:  statusCode >= 500, // Server errors are retryable
	}
}

// NewParseError creates a document-parse error
func NewParseError(location string, err error) *DeviceError {
	return &DeviceError{
		Type:      ErrTypeParse,
		Message:   "Receiver sent a malformed document",
		Err:       err,
		Location:  location,
		Retryable: false,
	}
}

// RemoteStatus extracts the receiver's status code from an error chain.
// Returns 0 when the error was not a remote protocol error.
func RemoteStatus(err error) int {
	var devErr *DeviceError
	if errors.As(err, &devErr) && devErr.Type == ErrTypeRemote {
		return devErr.StatusCode
	}
	return 0
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
