package registry

import (
	"errors"
	"fmt"
)

// Common errors returned by the DataCite client.
var (
	// ErrUnauthorized indicates bad repository credentials.
	ErrUnauthorized = errors.New("DataCite authentication error")

	// ErrNotFound indicates the DOI does not exist in the registry.
	ErrNotFound = errors.New("DOI not found in DataCite")

	// ErrSchema indicates the payload was rejected by the registry.
	// This points at a mapping defect rather than bad user input.
	ErrSchema = errors.New("DataCite rejected the metadata schema")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with DataCite")

	// ErrInvalidResponse indicates an unexpected API response body.
	ErrInvalidResponse = errors.New("invalid response from DataCite")
)

// APIError represents an error response from the DataCite REST API.
type APIError struct {
	StatusCode int
	DOI        string
	Message    string
}

func (e *APIError) Error() string {
	if e.DOI != "" {
		return fmt.Sprintf("DataCite API error (status %d): %s (doi: %s)", e.StatusCode, e.Message, e.DOI)
	}
	return fmt.Sprintf("DataCite API error (status %d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized returns true if the error indicates bad credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}

// IsNotFound returns true if the error indicates a missing DOI.
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
