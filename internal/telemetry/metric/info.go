package metric

import (
	"maps"
	"slices"
	"sync"
)

// Info is a fixed set of string fields exposed as `<name>_info{...} 1`.
// It is meant to be set once per process; later calls replace the fields.
type Info struct {
	desc *Desc

	mu     sync.RWMutex
	fields map[string]string
}

func newInfo(desc *Desc) *Info {
	return &Info{desc: desc}
}

// Desc returns the instrument descriptor.
func (i *Info) Desc() *Desc { return i.desc }

// Set replaces the info fields. Keys that are not valid label names are
// dropped.
func (i *Info) Set(fields map[string]string) {
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		if labelNameRE.MatchString(k) {
			clean[k] = v
		}
	}
	i.mu.Lock()
	i.fields = clean
	i.mu.Unlock()
}

// Fields returns a copy of the current fields.
func (i *Info) Fields() map[string]string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return maps.Clone(i.fields)
}

func (i *Info) snapshot() Family {
	f := Family{
		Name: exposedName(i.desc),
		Help: i.desc.Help,
		Kind: KindInfo,
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.fields == nil {
		return f
	}
	keys := slices.Sorted(maps.Keys(i.fields))
	values := make([]string, len(keys))
	for n, k := range keys {
		values[n] = i.fields[k]
	}
	f.LabelNames = keys
	f.Series = []Series{{LabelValues: values, Value: 1}}
	return f
}
