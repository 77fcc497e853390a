// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized in-memory implementations can be reused across test
// packages. Each mock exposes function fields to override individual
// methods and falls back to a map-backed default implementation.
package mocks
