// Package handlers defines HTTP-layer error codes used across all API
// endpoints. The constants give clients a stable, machine-readable taxonomy
// that supplements the human-readable messages passed to fail().
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeGrantFailed = "grant_failed"
	ErrCodeCheckFailed = "check_failed"
)
