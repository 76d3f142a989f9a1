package repository

import "errors"

// Common domain errors used across different layers
var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidSecret indicates a heartbeat carried a secret the registry never issued
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidSecret checks if an error is an "invalid secret" error
func IsInvalidSecret(err error) bool {
	return errors.Is(err, ErrInvalidSecret)
}

// IsInvalidInput checks if an error is an "invalid input" error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
