package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound              ErrorCode = "NOT_FOUND"
	ErrConflict              ErrorCode = "CONFLICT"
	ErrBadRequest            ErrorCode = "BAD_REQUEST"
	ErrUnauthorized          ErrorCode = "UNAUTHORIZED"
	ErrRateLimited           ErrorCode = "RATE_LIMITED"
	ErrResolutionUnavailable ErrorCode = "RESOLUTION_UNAVAILABLE"
	ErrSinkCreateFailed      ErrorCode = "SINK_CREATE_FAILED"
	ErrSinkChurnFailed       ErrorCode = "SINK_CHURN_FAILED"
	ErrInternalServer        ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if details != nil {
		logrus.Debug(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// MapHTTPStatusToError classifies a non-2xx source response. 400 and 401 are not
// recoverable; every other status is treated as a rate limit.
func MapHTTPStatusToError(status int, body string) APIError {
	var apiErr APIError
	switch status {
	case http.StatusBadRequest:
		apiErr = NewAPIError(ErrBadRequest, "a required parameter is missing", body)
	case http.StatusUnauthorized:
		apiErr = NewAPIError(ErrUnauthorized, "invalid access token", body)
	default:
		apiErr = NewAPIError(ErrRateLimited, fmt.Sprintf("request limited with status %d", status), body)
	}
	apiErr.StatusCode = status
	return apiErr
}

// IsCode reports whether err, or any error it wraps, is an APIError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsRetryable reports whether the failure can be recovered from by rotating credentials.
func IsRetryable(err error) bool {
	return IsCode(err, ErrRateLimited)
}
