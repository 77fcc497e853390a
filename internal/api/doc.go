// Package api implements the HTTP handlers for the service: account
// registration and login, site and system management, simulation runs
// and synchronous previews, solar position lookups and parameter
// database browsing.
//
// Handlers decode and validate requests with the shared helpers, call
// into the service layer, and translate service errors to HTTP status
// codes through MapErrorToStatusCode without leaking internal detail.
package api
