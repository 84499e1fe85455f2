package s2

import (
	"errors"
	"fmt"
)

// Common errors returned by the S2 client.
var (
	// ErrNotFound indicates the paper was not found.
	ErrNotFound = errors.New("not found in Semantic Scholar")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("Semantic Scholar authentication error")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("Semantic Scholar rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Semantic Scholar")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Semantic Scholar")

	// ErrInvalidFetchMode indicates an unknown field-selection mode.
	ErrInvalidFetchMode = errors.New("invalid fetch mode: must be one of both, citations, references")

	// ErrEmptyQuery indicates a keyword search without keywords.
	ErrEmptyQuery = errors.New("search query is required")
)

// APIError represents a non-success HTTP status from the S2 API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Semantic Scholar API error (status %d): %s", e.StatusCode, e.Message)
}

// BatchError identifies the chunk of a batched lookup that failed.
// The whole batched call fails with it; partial results are discarded.
type BatchError struct {
	Batch int // zero-based chunk index
	Start int // index of the first id of the chunk in the input
	End   int // index one past the last id of the chunk
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("fetching batch %d (ids %d-%d): %v", e.Batch, e.Start, e.End-1, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
