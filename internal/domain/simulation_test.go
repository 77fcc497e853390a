package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testWeather = json.RawMessage(`[{"time":"2023-06-21T19:00:00Z","ghi":800,"dni":700,"dhi":100}]`)

func TestNewSimulationRun(t *testing.T) {
	systemID, userID := uuid.New(), uuid.New()

	run, err := NewSimulationRun(systemID, userID, testWeather)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if run.Status != SimulationStatusPending {
		t.Errorf("Expected pending status, got %s", run.Status)
	}
	if run.SystemID != systemID || run.UserID != userID {
		t.Error("Expected references to be set")
	}
	if run.StartedAt != nil || run.CompletedAt != nil {
		t.Error("Expected no execution timestamps on a new run")
	}
}

func TestNewSimulationRunValidation(t *testing.T) {
	_, err := NewSimulationRun(uuid.Nil, uuid.New(), testWeather)
	if !errors.Is(err, ErrSimulationWithoutSystem) {
		t.Errorf("Expected %v, got %v", ErrSimulationWithoutSystem, err)
	}

	_, err = NewSimulationRun(uuid.New(), uuid.Nil, testWeather)
	if !errors.Is(err, ErrSimulationWithoutOwner) {
		t.Errorf("Expected %v, got %v", ErrSimulationWithoutOwner, err)
	}

	_, err = NewSimulationRun(uuid.New(), uuid.New(), nil)
	if !errors.Is(err, ErrEmptyWeather) {
		t.Errorf("Expected %v, got %v", ErrEmptyWeather, err)
	}
}

func TestSimulationRunValidateStatus(t *testing.T) {
	run, err := NewSimulationRun(uuid.New(), uuid.New(), testWeather)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	run.Status = "daydreaming"
	if err := run.Validate(); !errors.Is(err, ErrInvalidSimulationStatus) {
		t.Errorf("Expected %v, got %v", ErrInvalidSimulationStatus, err)
	}
}

func TestSimulationRunLifecycle(t *testing.T) {
	run, err := NewSimulationRun(uuid.New(), uuid.New(), testWeather)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	started := time.Now().UTC()
	run.MarkRunning(started)
	if run.Status != SimulationStatusRunning {
		t.Errorf("Expected running, got %s", run.Status)
	}
	if run.StartedAt == nil || !run.StartedAt.Equal(started) {
		t.Error("Expected start time to be stamped")
	}

	finished := started.Add(2 * time.Second)
	results := json.RawMessage(`{"ac":[1500]}`)
	run.MarkCompleted(finished, results)
	if run.Status != SimulationStatusCompleted {
		t.Errorf("Expected completed, got %s", run.Status)
	}
	if string(run.Results) != string(results) {
		t.Error("Expected results to be stored")
	}
	if run.CompletedAt == nil || !run.CompletedAt.Equal(finished) {
		t.Error("Expected completion time to be stamped")
	}
}

func TestSimulationRunMarkFailed(t *testing.T) {
	run, err := NewSimulationRun(uuid.New(), uuid.New(), testWeather)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now := time.Now().UTC()
	run.MarkFailed(now, "module parameters match no known DC model")
	if run.Status != SimulationStatusFailed {
		t.Errorf("Expected failed, got %s", run.Status)
	}
	if run.Error == "" {
		t.Error("Expected failure cause to be recorded")
	}
}
