// Package tracing configures OpenTelemetry context propagation.
//
// No SDK provider is installed: spans started by the store and otelhttp are
// non-recording and carry the caller's W3C trace context, so trace and span
// ids reach the logs and the catalog requests without an exporter.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Propagator handles W3C traceparent/tracestate and baggage headers.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// Install sets Propagator as the global propagator used by outgoing otelhttp transports.
func Install() {
	otel.SetTextMapPropagator(Propagator())
}
