package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SimulationStatus tracks a simulation run through its lifecycle.
type SimulationStatus string

const (
	SimulationStatusPending   SimulationStatus = "pending"
	SimulationStatusRunning   SimulationStatus = "running"
	SimulationStatusCompleted SimulationStatus = "completed"
	SimulationStatusFailed    SimulationStatus = "failed"
)

// Simulation validation errors.
var (
	ErrEmptySimulationID       = errors.New("simulation ID cannot be empty")
	ErrSimulationWithoutSystem = errors.New("simulation must reference a system")
	ErrSimulationWithoutOwner  = errors.New("simulation must belong to a user")
	ErrEmptyWeather            = errors.New("simulation requires a weather series")
	ErrInvalidSimulationStatus = errors.New("invalid simulation status")
)

// SimulationRun is one requested execution of the modeling pipeline for
// a system against a weather series. Weather and Results carry the
// serialized series so the run is reproducible from its record alone.
type SimulationRun struct {
	ID       uuid.UUID        `json:"id"`
	SystemID uuid.UUID        `json:"system_id"`
	UserID   uuid.UUID        `json:"user_id"`
	Status   SimulationStatus `json:"status"`

	Weather json.RawMessage `json:"weather,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewSimulationRun creates a pending run with a fresh ID and timestamps.
func NewSimulationRun(systemID, userID uuid.UUID, weather json.RawMessage) (*SimulationRun, error) {
	now := time.Now().UTC()
	run := &SimulationRun{
		ID:        uuid.New(),
		SystemID:  systemID,
		UserID:    userID,
		Status:    SimulationStatusPending,
		Weather:   weather,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// Validate checks field constraints.
func (r *SimulationRun) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptySimulationID
	}
	if r.SystemID == uuid.Nil {
		return ErrSimulationWithoutSystem
	}
	if r.UserID == uuid.Nil {
		return ErrSimulationWithoutOwner
	}
	if len(r.Weather) == 0 {
		return ErrEmptyWeather
	}
	switch r.Status {
	case SimulationStatusPending, SimulationStatusRunning,
		SimulationStatusCompleted, SimulationStatusFailed:
	default:
		return ErrInvalidSimulationStatus
	}
	return nil
}

// MarkRunning transitions the run to running and stamps the start time.
func (r *SimulationRun) MarkRunning(now time.Time) {
	r.Status = SimulationStatusRunning
	r.StartedAt = &now
	r.UpdatedAt = now
}

// MarkCompleted transitions the run to completed with its serialized
// results.
func (r *SimulationRun) MarkCompleted(now time.Time, results json.RawMessage) {
	r.Status = SimulationStatusCompleted
	r.Results = results
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkFailed transitions the run to failed with the failure message.
func (r *SimulationRun) MarkFailed(now time.Time, cause string) {
	r.Status = SimulationStatusFailed
	r.Error = cause
	r.CompletedAt = &now
	r.UpdatedAt = now
}
