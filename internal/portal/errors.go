// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"errors"
	"net/http"
)

// NetworkErrorMessage is reported when the portal could not be reached.
const NetworkErrorMessage = "Network error"

var (
	ErrInvalidBaseURL = errors.New("invalid portal base url")
	ErrUnauthorized   = errors.New("not authorized")
	ErrBodyTooLarge   = errors.New("response body too large")
)

// APIError is a failed portal call. Message is what the portal said, or a
// per-endpoint fallback when it said nothing useful.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// retryable is true for transport failures, throttling and server errors.
func retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == 0 {
		return true
	}
	return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
}
