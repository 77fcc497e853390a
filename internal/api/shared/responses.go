package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pvgrid/helioserve/internal/platform/logger"
	"github.com/pvgrid/helioserve/internal/redact"
)

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"-"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes the given payload as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing useful to send the client.
		slog.Default().Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// RespondWithError writes a JSON error response with the request's trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, status, ErrorResponse{
		Error:   message,
		TraceID: GetTraceID(r.Context()),
	})
}

// ErrorLogOption adjusts how RespondWithErrorAndLog records an error.
type ErrorLogOption func(*errorLogOptions)

type errorLogOptions struct {
	elevated bool
}

// WithElevatedLogLevel forces an ERROR level log entry even for a 4xx
// status. Useful for client errors that indicate a misbehaving caller.
func WithElevatedLogLevel() ErrorLogOption {
	return func(o *errorLogOptions) {
		o.elevated = true
	}
}

// RespondWithErrorAndLog writes a JSON error response and logs the
// underlying error. Server errors log at ERROR, client errors at DEBUG.
// Logged error details pass through redaction so credentials embedded in
// driver errors never reach the log stream.
func RespondWithErrorAndLog(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, message string, err error, opts ...ErrorLogOption) {
	options := errorLogOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	log := logger.FromContext(ctx)
	attrs := []any{
		slog.Int("status", status),
		slog.String("message", message),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", redact.Error(err)))
	}

	switch {
	case status >= 500 || options.elevated:
		log.Error("request failed", attrs...)
	default:
		log.Debug("request rejected", attrs...)
	}

	RespondWithError(w, r, status, message)
}
