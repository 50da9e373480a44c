package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Translation directions.
const (
	DirectionToModern = "to_modern"
	DirectionToLegacy = "to_legacy"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ProfileMetrics counts adapter translations, times backend calls and
// counts idempotent replays.
type ProfileMetrics struct {
	translations    *Counter
	backendDuration *Histogram
	replays         *Counter
}

// NewProfileMetrics registers the gateway's domain instruments on meter.
func NewProfileMetrics(meter metric.Meter) (*ProfileMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	translations, err := NewCounter(meter,
		"gateway_profile_translations_total",
		"Profiles translated between the legacy and modern shapes",
		"{translations}",
	)
	if err != nil {
		return nil, err
	}

	backendDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "gateway_backend_call_duration_seconds",
		Description: "Latency of calls to the modern customer backend",
		Unit:        "s",
		Boundaries:  BackendDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	replays, err := NewCounter(meter,
		"gateway_idempotent_replays_total",
		"Responses served from the idempotency store",
		"{responses}",
	)
	if err != nil {
		return nil, err
	}

	return &ProfileMetrics{
		translations:    translations,
		backendDuration: backendDuration,
		replays:         replays,
	}, nil
}

// RecordTranslation counts one adapter call.
func (m *ProfileMetrics) RecordTranslation(ctx context.Context, direction string, err error) {
	if m == nil {
		return
	}
	m.translations.Inc(ctx, AttrDirection.String(direction), AttrOutcome.String(outcomeOf(err)))
}

// RecordBackendCall records the latency of one backend operation.
func (m *ProfileMetrics) RecordBackendCall(ctx context.Context, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.backendDuration.RecordDuration(ctx, d, AttrOperation.String(operation), AttrOutcome.String(outcomeOf(err)))
}

// RecordReplay counts a response served from the idempotency store.
func (m *ProfileMetrics) RecordReplay(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.replays.Inc(ctx, AttrHTTPMethod.String(method))
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
