package domain

import "errors"

// Policy errors. Each one is terminal for the current request and maps to a
// distinct client-visible status.
var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("access forbidden")
	ErrSubscriptionRequired = errors.New("no active subscription")
	ErrLimitExceeded        = errors.New("subscription limit reached")
	ErrFeatureUnavailable   = errors.New("feature not available in current plan")
	ErrPaymentRequired      = errors.New("payment verification failed")
)

// Lookup and state errors.
var (
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrStaffNotFound        = errors.New("staff member not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("no active subscription found")

	ErrOwnerExists        = errors.New("owner already exists")
	ErrStaffExists        = errors.New("staff member already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidOperation   = errors.New("operation not allowed")
	ErrConflict           = errors.New("conflict with current state")
)

// IsNotFound reports whether err wraps any of the lookup-miss errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOwnerNotFound) ||
		errors.Is(err, ErrStaffNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrStoreNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound)
}
