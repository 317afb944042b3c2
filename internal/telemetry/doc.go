// Package telemetry wires OpenTelemetry tracing and log export for the
// chefmate API.
//
// Traces and logs are exported over OTLP/HTTP. The endpoint may carry a
// base path (Grafana Cloud "/otlp", Better Stack root ingestion) which is
// split off and turned into per-signal URL paths.
package telemetry
