// Package instrumentation provides OpenTelemetry metrics and tracing for the
// service.
//
// Metrics are exported through Prometheus by default (served by the
// dedicated metrics server), or through OTLP/stdout for development.
// Tracing is disabled unless an exporter is configured.
package instrumentation
