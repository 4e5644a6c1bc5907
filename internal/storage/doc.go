// Package storage provides the persistent item store for vitals.
//
// BadgerStore keeps demo items in an embedded Badger database, one JSON
// value per item under the item/ key prefix. It satisfies
// service.ItemRepository, as does the in-memory store in the memory
// sub-package; the server picks one with storage.backend.
//
// A background loop runs value log garbage collection every
// Config.GCInterval. When a metric.Registry is supplied, the store
// exports vitals_storage_size_bytes{part} and
// vitals_storage_gc_runs_total{result}.
package storage
