// Package observe wires telemetry for the service: OpenTelemetry tracing and
// metrics behind pluggable exporters, structured logging over slog, and HTTP
// middleware that records per-request spans and metrics.
package observe
