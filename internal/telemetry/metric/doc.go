// Package metric implements the in-process metric registry for vitals.
//
// A Registry owns every instrument by name. Instruments come in four
// kinds (counter, gauge, histogram, info); each keeps one child per label
// tuple, created lazily on first use.
//
//   - registry.go: registration, lookup, snapshot, one-time Init
//   - counter.go, gauge.go, histogram.go, info.go: instrument kinds
//   - gather.go: snapshot to client_model families (prometheus.Gatherer)
//   - prometheus.go: the /metrics handler (expfmt encoding)
//   - http.go, system.go: the instrument sets the server exposes
//
// Label children are never evicted. Label values must come from a bounded
// set (route templates, methods, status codes, mountpoints); feeding raw
// paths or user input into labels grows memory without limit.
package metric
