// Package main provides the entry point for vitals-server.
//
// vitals-server serves a small demo data API and exports Prometheus
// metrics about its own HTTP traffic and the host it runs on.
//
// Usage:
//
//	vitals-server [-config path] [-log-level level] [-version]
//
// Configuration is layered: built-in defaults, then the YAML file given
// with -config, then VITALS_* environment variables. Changes to
// log.level in the file are applied without a restart.
//
// Demo items live in memory unless storage.backend is "badger", in which
// case they persist under storage.dir.
package main
