package services

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP
// status codes; anything else is treated as an infrastructure failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrInvalidPayment  = errors.New("invalid payment details")
	ErrMissingReason   = errors.New("rejection reason is required")
	ErrNotPending      = errors.New("course is not pending review")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyMessage    = errors.New("message text cannot be empty")
)
