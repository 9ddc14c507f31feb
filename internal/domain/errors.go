package domain

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: bad ids, unknown menus, empty candidate sets.
	ErrInvalidInput = errors.New("invalid input")
	ErrMenuNotFound = errors.New("menu not found")

	// ErrInvalidModelOutput means the model answered but not with a candidate meal id.
	ErrInvalidModelOutput = errors.New("model did not return a valid meal id")
	ErrServiceUnavailable = errors.New("recommendation model unavailable")
	ErrCancelled          = errors.New("request cancelled")
)
