// Package logger provides structured logging for vitals on top of log/slog.
//
//   - logger.go: Logger interface, JSON/text handlers, dynamic level
//   - context.go: request IDs carried in the context, added to entries
//     by the handler that New installs
//   - redact.go: masking of credentials in attributes and query strings
//
// The level is process-wide and can be changed at runtime with SetLevel,
// which the configuration watcher does when log.level changes.
package logger
