// Package sampler periodically reads process and host statistics and
// writes them into the system instrument set.
//
// A Sampler moves Stopped -> Starting -> Running and back to Stopped when
// it is stopped or the process can no longer be observed. It never
// restarts itself. Tests drive single iterations through RunOnce.
package sampler
