package service

import "errors"

// Common service errors. Callers check these with errors.Is; the API
// layer maps them to HTTP status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than
	// the one making the request. Maps to HTTP 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a login attempt with an unknown
	// email or a wrong password. Maps to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrModuleNotFound indicates a module name that is not in the
	// parameter database. Maps to HTTP 422 on system creation.
	ErrModuleNotFound = errors.New("module not found in parameter database")

	// ErrInverterNotFound indicates an inverter name that is not in the
	// parameter database.
	ErrInverterNotFound = errors.New("inverter not found in parameter database")
)
