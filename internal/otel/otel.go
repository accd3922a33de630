//go:build !no_otel

// Package otel provides the tracer wrapped around handler and storage
// operations. Building with the no_otel tag swaps in a no-op
// implementation with the same call shape, cutting the whole
// opentelemetry dependency tree out of the binary.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
