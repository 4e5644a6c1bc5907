// Package main provides the entry point for vitals-cli.
//
// vitals-cli queries a running vitals server: health and readiness,
// the Prometheus exposition, and the demo data API.
package main
