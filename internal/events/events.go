package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskRequestEvent is a request to create a background task. It carries
// everything needed for task creation without a dependency on the task
// package itself.
type TaskRequestEvent struct {
	// ID uniquely identifies this event
	ID uuid.UUID `json:"id"`

	// Type names the task type that should be created,
	// e.g. "simulation_run"
	Type string `json:"type"`

	// Payload holds the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a TaskRequestEvent with the given type,
// serializing the payload to JSON
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler is implemented by components that consume events
type EventHandler interface {
	// HandleEvent processes the given event within the provided context
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter is implemented by components that publish events to
// registered handlers
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
