// Package events decouples services that request background work from
// the task machinery that performs it.
//
// A service (for example the simulation service queueing a run) emits a
// TaskRequestEvent describing what should happen; registered handlers
// turn the event into concrete tasks. Neither side imports the other,
// which keeps the dependency graph acyclic.
//
// The primary components are:
// - TaskRequestEvent: a request to create a background task
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
package events
