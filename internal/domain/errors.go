package domain

import "errors"

var (
	// ErrNoTestResults is returned when a user has no usable onboarding test data.
	ErrNoTestResults = errors.New("no onboarding test data found")
)
