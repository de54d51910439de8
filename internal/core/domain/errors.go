package domain

import (
	"errors"
	"fmt"
)

var (
	ErrScopeNotFound       = errors.New("scope not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotOwner            = errors.New("scope owned by another user")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrNormalizationFailed = errors.New("normalization failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
