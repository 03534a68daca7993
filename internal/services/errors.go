// Package services implements the hotel concierge business logic: tenant
// authentication, the chat reply pipeline, dashboard analytics and widget
// event tracking.
//
// This file centralizes service-level error values. Handlers translate them
// into HTTP status codes and reply envelopes; services never write HTTP.
package services

import "errors"

// Reply pipeline errors.
var (
	// ErrMissingCredentials is returned when the hotel id or key is blank.
	ErrMissingCredentials = errors.New("hotel_id and hotel_key are required")

	// ErrUnauthorized is returned when the hotel id is unknown or the key
	// does not match the registered secret.
	ErrUnauthorized = errors.New("unauthorized hotel")

	// ErrEmptyMessage is returned when the guest message is blank after trimming.
	ErrEmptyMessage = errors.New("empty message")

	// ErrMessageTooLong is returned when the guest message exceeds the
	// configured character limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrRateLimited is returned when the (hotel, session) window is full.
	ErrRateLimited = errors.New("too many messages")

	// ErrQuotaExceeded is returned when the hotel has used its daily model
	// calls. The limit reply has already been logged when this is returned.
	ErrQuotaExceeded = errors.New("daily AI limit reached")

	// ErrHotelNotFound is returned when the hotel has credentials but no
	// profile row.
	ErrHotelNotFound = errors.New("hotel not found")

	// ErrUpstream wraps failures of the language model call.
	ErrUpstream = errors.New("model call failed")

	// errNoUsageCounter means the quota gate is not wired.
	errNoUsageCounter = errors.New("no usage counter configured")
)

// Event tracking errors.
var (
	// ErrMissingSession is returned when an event carries no session id.
	ErrMissingSession = errors.New("session_id is required")

	// ErrInvalidEventType is returned for event types outside the tracked set.
	ErrInvalidEventType = errors.New("event_type must be one of: booking_click, lead_created, widget_open, widget_close")
)
