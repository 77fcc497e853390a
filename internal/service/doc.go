// Package service holds the application services that sit between the
// HTTP handlers and the stores: user account management, site and
// system CRUD with ownership checks, and the simulation service that
// queues runs and executes the model chain.
//
// Services return sentinel errors for expected conditions (not found,
// not owned, duplicate names) so the API layer can map them to status
// codes with errors.Is, and wrap everything else with %w for context.
package service
