// Package otel binds cookiejwt metrics to OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per counter and a set
// of gauges per latency histogram. One callback reads
// [cookiejwt.JWTCookieStorage.MetricsSnapshot] on each collection cycle.
// Callers own the MeterProvider and pass in a Meter.
package otel
