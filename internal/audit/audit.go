// Package audit emits registration lifecycle events. Emission is always
// best-effort: callers log failures and continue, an audit outage must never
// fail a registration.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Actions recorded by this service.
const (
	ActionRegistrationCreated = "registration_created"
	ActionRegistrationDeleted = "registration_deleted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

// Publisher delivers audit events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log. Used when Kafka is not
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs the log-only sink.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"action", event.Action,
		"subject", event.Subject,
		"detail", event.Detail,
		"request_id", event.RequestID,
	)
	return nil
}
