// Package httpserver provides the HTTP/HTTPS server for vitals.
//
// This package wires the public endpoints using stdlib net/http:
//
//   - Health endpoints: /health, /health/live, /health/ready, /health/detailed
//   - Metrics endpoint: /metrics (path configurable)
//   - Demo data endpoints: /data, /data/{id}, /error
//
// Every request passes through the middleware chain Recover, RequestID,
// Audit and Instrument. Instrument feeds the HTTP instrument set and
// labels each request with its route template, never the raw path, so
// label cardinality stays bounded by the number of routes.
package httpserver
