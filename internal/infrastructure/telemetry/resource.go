// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope continuous profiling for the gateway.
//
// Every provider in this package is safe to construct with its feature
// disabled. A disabled provider installs nothing globally, and its
// Shutdown and ForceFlush are no-ops, so callers never need to branch on
// configuration.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported on every exported signal.
var ServiceVersion = "1.0.0"

// newResource describes this process to the collector.
func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
