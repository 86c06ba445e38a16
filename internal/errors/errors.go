// Package errors provides custom error types for the stormchat clients.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common cases
var (
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrStreamInProgress = errors.New("a reply is already being generated")
	ErrNotStreaming     = errors.New("no reply is being generated")
	ErrNoResponseBody   = errors.New("no response body")
	ErrNoFileSelected   = errors.New("no file selected")
	ErrInvalidFrame     = errors.New("invalid stream frame")
)

// APIError represents a non-success HTTP response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying an excerpt of the response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError represents a request that could not be issued or completed
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkErrorWithEndpoint creates a new NetworkError
func NewNetworkErrorWithEndpoint(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}

// StreamError represents a failure while reading an already open stream
type StreamError struct {
	Endpoint string
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream interrupted at %s: %v", e.Endpoint, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// NewStreamError creates a new StreamError
func NewStreamError(endpoint string, err error) *StreamError {
	return &StreamError{Endpoint: endpoint, Err: err}
}

// FrameError represents a stream frame that could not be decoded
type FrameError struct {
	Frame   string
	Message string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("invalid stream frame: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *FrameError) Is(target error) bool {
	if target == ErrInvalidFrame {
		return true
	}
	_, ok := target.(*FrameError)
	return ok
}

// NewFrameError creates a new FrameError
func NewFrameError(frame, message string) *FrameError {
	return &FrameError{Frame: frame, Message: message}
}

// UploadError represents a failed file upload
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// NewUploadError creates a new UploadError
func NewUploadError(fileName string, err error) *UploadError {
	return &UploadError{FileName: fileName, Err: err}
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body excerpt carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var streamErr *StreamError
	return errors.As(err, &streamErr)
}

// IsTimeoutError reports whether err was caused by a deadline
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsUploadError reports whether err came from a file upload
func IsUploadError(err error) bool {
	var upErr *UploadError
	return errors.As(err, &upErr)
}

// IsFrameError reports whether err is a malformed stream frame
func IsFrameError(err error) bool {
	return errors.Is(err, ErrInvalidFrame)
}

// IsCanceled reports whether err is a user cancellation
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
