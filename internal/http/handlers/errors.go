// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and travel in the "code" field of
// ErrorResponse next to a human-readable "error" message. Clients branch on
// the code; the message is safe to show to hotel staff.
//
// Example response:
//
//	{
//	  "ok": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "unauthorized",
//	  "error": "Unauthorized"
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal_error"
	// Sent by the edge rate limiter in middleware.
	ErrCodeRateLimited = "too_many_requests"

	// Domain-specific:
	ErrCodeInvalidEvent     = "invalid_event"
	ErrCodeUnavailable      = "unavailable"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
