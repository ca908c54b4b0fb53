package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound          = errors.New("resource not found")
	ErrResultSetNotFound = fmt.Errorf("%w: result set", ErrNotFound)

	ErrMalformedPayload = errors.New("malformed upstream payload")

	// Input errors
	ErrUnknownCategory = errors.New("unknown analysis type")
	ErrUnknownPlotKind = errors.New("unknown plot kind")
)

// IsNotFoundError reports whether err wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports whether err was caused by a caller-supplied value
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrUnknownPlotKind)
}
