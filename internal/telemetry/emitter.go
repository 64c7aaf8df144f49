// Package telemetry records operational events for the gift pipeline.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/gratefulday/gratefulday.space/internal/services/gift/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event, stamping the active trace context when one
// is present. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, name string, severity Severity, attributes map[string]string) error {
	if e == nil || e.store == nil {
		return nil
	}

	event := storage.TelemetryEvent{
		Name:       name,
		Severity:   string(severity),
		Attributes: attributes,
	}
	if e.clock == nil {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = e.clock().UTC()
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		event.TraceID = sc.TraceID().String()
		event.SpanID = sc.SpanID().String()
	}
	return e.store.AppendTelemetryEvent(ctx, event)
}
