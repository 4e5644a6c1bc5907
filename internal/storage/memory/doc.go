// Package memory provides in-memory storage for vitals.
//
// Store keeps demo items in a pkg/cmap sharded map. Items are cloned on
// the way in and out so callers never share state with the store.
package memory
