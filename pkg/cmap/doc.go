// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex, so writers on different shards never contend:
//
//	m := cmap.New[string, *Counter]()
//	c, loaded := m.GetOrSet("GET\xff/data", newCounter())
//
// All visits shards one at a time; the view it yields is not a
// point-in-time snapshot of the whole map.
package cmap
