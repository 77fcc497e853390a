package api

import (
	"errors"
	"net/http"

	"github.com/pvgrid/helioserve/internal/service"
	"github.com/pvgrid/helioserve/internal/service/auth"
	"github.com/pvgrid/helioserve/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based
// on the error type, so handlers never leak internal error taxonomy to
// clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Unresolvable catalog references
	case errors.Is(err, service.ErrModuleNotFound),
		errors.Is(err, service.ErrInverterNotFound):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrSiteNotFound):
		return "Site not found"

	case errors.Is(err, store.ErrSystemNotFound):
		return "System not found"

	case errors.Is(err, store.ErrSimulationNotFound):
		return "Simulation run not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrSiteNameExists):
		return "A site with this name already exists"

	case errors.Is(err, store.ErrSystemNameExists):
		return "A system with this name already exists"

	case errors.Is(err, service.ErrModuleNotFound):
		return "Module not found in parameter database"

	case errors.Is(err, service.ErrInverterNotFound):
		return "Inverter not found in parameter database"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
