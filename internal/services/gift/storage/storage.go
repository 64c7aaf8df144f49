// Package storage defines the persistence boundaries for the gift service.
package storage

import (
	"context"
	"time"
)

// HistoryStore persists the bounded recent-recipient list.
type HistoryStore interface {
	RecentRecipients(ctx context.Context) ([]string, error)
	PutRecentRecipients(ctx context.Context, pubkeys []string) error
}

// TelemetryEvent captures one operational pipeline event.
type TelemetryEvent struct {
	Name       string
	Severity   string
	Attributes map[string]string
	TraceID    string
	SpanID     string
	Timestamp  time.Time
}

// TelemetryStore appends operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}
