// Package services defines the business logic for notifications, the
// deduplication pipeline, and inventory health sweeps. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Validation and lookup errors.
var (
	// ErrMissingUserID is returned when a request carries no user id.
	ErrMissingUserID = errors.New("user id is required")

	// ErrMissingTitle is returned when a notification title is empty after
	// sanitization.
	ErrMissingTitle = errors.New("title is required")

	// ErrTitleTooLong is returned when a title exceeds the maximum
	// configured length limit.
	ErrTitleTooLong = errors.New("title too long")

	// ErrMissingMessage is returned when a notification body is empty after
	// sanitization.
	ErrMissingMessage = errors.New("message is required")

	// ErrMessageTooLong is returned when a body exceeds the maximum
	// configured length limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrInvalidCategory is returned when a category is outside the known
	// set (low_stock, expiry, system, sales).
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidPriority is returned when a priority is outside 1..5.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrNotificationNotFound indicates that the requested notification does
	// not exist or is not accessible to the current user.
	ErrNotificationNotFound = errors.New("notification not found")
)

// IsValidation reports whether err is one of the input-validation errors
// above, so handlers can map the whole family to a 400 without enumerating
// each sentinel.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrMissingUserID,
		ErrMissingTitle,
		ErrTitleTooLong,
		ErrMissingMessage,
		ErrMessageTooLong,
		ErrInvalidCategory,
		ErrInvalidPriority,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
