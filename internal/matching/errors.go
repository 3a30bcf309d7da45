package matching

import (
	"context"
	"errors"
	"fmt"

	"match-engine/internal/models"
)

var (
	ErrValidation          = errors.New("VALIDATION_FAILED")
	ErrUnauthorized        = errors.New("UNAUTHORIZED")
	ErrForbidden           = errors.New("FORBIDDEN")
	ErrNotFound            = errors.New("NOT_FOUND")
	ErrAlreadySwiped       = errors.New("ALREADY_SWIPED")
	ErrApplicationConflict = errors.New("APPLICATION_CONFLICT")
	ErrInvalidTransition   = errors.New("INVALID_STATUS_TRANSITION")
	ErrQuotaExceeded       = errors.New("QUOTA_EXCEEDED")
	ErrDependency          = errors.New("DEPENDENCY_FAILURE")
)

// QuotaExceededError carries the tier and limit so callers can offer an upgrade.
type QuotaExceededError struct {
	Tier  models.Tier
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d right swipes used today on tier %s", ErrQuotaExceeded, e.Used, e.Limit, e.Tier)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

var domainErrors = []error{
	ErrValidation,
	ErrUnauthorized,
	ErrForbidden,
	ErrNotFound,
	ErrAlreadySwiped,
	ErrApplicationConflict,
	ErrInvalidTransition,
	ErrQuotaExceeded,
	ErrDependency,
}

// IsDomainError reports whether err already carries one of the package sentinels.
func IsDomainError(err error) bool {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// storeFailure wraps raw repository errors as dependency failures and passes
// domain errors through untouched.
func storeFailure(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDependency, op, err)
}

func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
