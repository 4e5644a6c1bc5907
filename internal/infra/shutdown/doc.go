// Package shutdown runs cleanup hooks when the process is asked to stop.
//
// A stop is requested by SIGINT/SIGTERM, by cancellation of the context
// passed to Wait, or by Trigger (for example when the HTTP listener
// fails). Hooks then run in reverse registration order under a shared
// timeout.
package shutdown
