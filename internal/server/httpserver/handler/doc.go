// Package handler provides HTTP request handlers for vitals.
//
// This package contains handlers for all HTTP endpoints:
//
//   - health.go: liveness, readiness and detailed health checks
//   - data.go: the demo item API and the error demo endpoint
//
// All JSON handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call domain service
//   - Format and return response in the standard envelope
//   - Map coded domain errors to HTTP status codes
//
// The metrics endpoint is mounted on the same mux but writes the
// Prometheus exposition format instead of the envelope.
package handler
