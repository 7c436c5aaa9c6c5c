package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrDailyLogNotFound   = fmt.Errorf("%w: daily log", ErrNotFound)
	ErrEmployeeNotFound   = fmt.Errorf("%w: employee", ErrNotFound)
	ErrPredictionNotFound = fmt.Errorf("%w: prediction", ErrNotFound)

	// Model lifecycle errors
	ErrModelNotReady   = errors.New("no active model loaded in registry")
	ErrModelNotLoaded  = errors.New("regressor has no model loaded")
	ErrModelSwapFailed = errors.New("model hot-swap failed")

	// Training errors
	ErrInsufficientData = errors.New("insufficient data for training")

	// Queue errors
	ErrClaimConflict     = errors.New("daily log already claimed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// NewNotFoundError builds a not-found error carrying the resource and id.
func NewNotFoundError(resource string, id int64) error {
	return fmt.Errorf("%w: %s with id %d", ErrNotFound, resource, id)
}

// NewInsufficientDataError reports how far short of the training minimum a
// dataset fell.
func NewInsufficientDataError(got, min int) error {
	return fmt.Errorf("%w: %d samples (minimum required: %d)", ErrInsufficientData, got, min)
}

// IsNotFoundError checks whether err is any not-found condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsModelError checks whether err stems from the model lifecycle.
func IsModelError(err error) bool {
	return errors.Is(err, ErrModelNotReady) ||
		errors.Is(err, ErrModelNotLoaded) ||
		errors.Is(err, ErrModelSwapFailed)
}
