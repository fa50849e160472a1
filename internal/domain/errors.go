package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// The error types below are the contract between the services and the HTTP
// layer: services return them, handlers translate them to status codes with
// HTTPStatus. Validation failures are always values of one of these types,
// never bare fmt.Errorf strings, so callers can branch without string
// matching.

// NotFoundError reports that an entity could not be resolved by the given
// key. An incentive owned by another redemption center is reported as not
// found, not as a permission error.
type NotFoundError struct {
	Entity string // "farmer", "incentive", ...
	Key    string // the lookup key as supplied by the caller
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NotFound builds a NotFoundError for an entity and lookup key.
func NotFound(entity string, key interface{}) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// InactiveEntityError reports an operation against an entity whose status is
// inactive (a farmer receiving incentives, a center being assigned a new
// allocation, a deactivated portal account).
type InactiveEntityError struct {
	Entity string
	ID     int64
}

func (e *InactiveEntityError) Error() string {
	return fmt.Sprintf("%s %d is inactive", e.Entity, e.ID)
}

// Inactive builds an InactiveEntityError.
func Inactive(entity string, id int64) *InactiveEntityError {
	return &InactiveEntityError{Entity: entity, ID: id}
}

// DuplicateDisbursementError reports a second disbursement attempt for the
// same (incentive, farmer) pair. Each farmer receives each incentive
// allocation at most once.
type DuplicateDisbursementError struct {
	IncentiveID int64
	FarmerID    int64
}

func (e *DuplicateDisbursementError) Error() string {
	return fmt.Sprintf("farmer %d has already received incentive %d", e.FarmerID, e.IncentiveID)
}

// InsufficientQuantityError reports that a requested disbursement quantity
// exceeds what remains of the incentive's allocation. Remaining carries the
// exact amount still available so the caller never has to guess.
type InsufficientQuantityError struct {
	Requested int
	Remaining int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity: requested %d, only %d remaining", e.Requested, e.Remaining)
}

// InvariantViolationError reports persisted state that breaks a core
// invariant (e.g. a negative remaining quantity). It signals corruption from
// a bug elsewhere, so it is surfaced verbatim and logged, never corrected
// silently.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Detail
}

// Invariant builds an InvariantViolationError with a formatted detail.
func Invariant(format string, args ...interface{}) *InvariantViolationError {
	return &InvariantViolationError{Detail: fmt.Sprintf(format, args...)}
}

// PermissionDeniedError reports a caller whose role does not allow the
// attempted operation.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Reason
}

// ValidationError reports malformed or inconsistent caller input on a named
// field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for a field.
func Invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ErrUnauthenticated is returned by the access gate when no usable identity
// accompanies a request.
var ErrUnauthenticated = errors.New("unauthenticated")

// HTTPStatus maps a domain error to the status code the JSON layer should
// answer with. Unrecognised errors map to 500.
func HTTPStatus(err error) int {
	var (
		notFound     *NotFoundError
		inactive     *InactiveEntityError
		duplicate    *DuplicateDisbursementError
		insufficient *InsufficientQuantityError
		invariant    *InvariantViolationError
		denied       *PermissionDeniedError
		invalid      *ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &inactive), errors.As(err, &insufficient), errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &invariant):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
