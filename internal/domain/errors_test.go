package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("farmer", 42), http.StatusNotFound},
		{"duplicate disbursement", &DuplicateDisbursementError{IncentiveID: 1, FarmerID: 2}, http.StatusConflict},
		{"inactive entity", Inactive("farmer", 7), http.StatusUnprocessableEntity},
		{"insufficient quantity", &InsufficientQuantityError{Requested: 5, Remaining: 3}, http.StatusUnprocessableEntity},
		{"validation", Invalid("nin", "must be 11 digits"), http.StatusUnprocessableEntity},
		{"permission denied", &PermissionDeniedError{}, http.StatusForbidden},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"invariant violation", Invariant("remaining is negative"), http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("disburse: %w", NotFound("incentive", 9))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))

	wrapped = fmt.Errorf("gate: %w", ErrUnauthenticated)
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(wrapped))
}

func TestInsufficientQuantityErrorReportsExactRemaining(t *testing.T) {
	err := &InsufficientQuantityError{Requested: 150, Remaining: 40}
	assert.Equal(t, "insufficient quantity: requested 150, only 40 remaining", err.Error())
}

func TestDuplicateDisbursementErrorNamesThePair(t *testing.T) {
	err := &DuplicateDisbursementError{IncentiveID: 3, FarmerID: 12}
	assert.Equal(t, "farmer 12 has already received incentive 3", err.Error())
}

func TestNotFoundKeyFormatting(t *testing.T) {
	require.Equal(t, "farmer not found: 42", NotFound("farmer", 42).Error())
	require.Equal(t, "farmer not found: 12345678901", NotFound("farmer", "12345678901").Error())
}

func TestValidationErrorWithoutField(t *testing.T) {
	err := &ValidationError{Reason: "group type is referenced by existing groups"}
	assert.Equal(t, "group type is referenced by existing groups", err.Error())
}
