package metric

import (
	"math"
	"slices"
	"sort"
	"sync"
)

// Histogram counts observations into fixed cumulative buckets for one
// label tuple.
type Histogram struct {
	upperBounds []float64 // shared, immutable, ends in +Inf
	labelValues []string

	mu     sync.Mutex
	counts []uint64 // cumulative: counts[i] = observations <= upperBounds[i]
	sum    float64
	count  uint64
}

// Observe records v: every bucket whose bound is >= v is incremented,
// together with the running sum and count. NaN is dropped.
func (h *Histogram) Observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	first := sort.SearchFloat64s(h.upperBounds, v)

	h.mu.Lock()
	for i := first; i < len(h.counts); i++ {
		h.counts[i]++
	}
	h.sum += v
	h.count++
	h.mu.Unlock()
}

// Snapshot returns a consistent copy of the histogram state.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	buckets := make([]Bucket, len(h.upperBounds))
	for i, ub := range h.upperBounds {
		buckets[i] = Bucket{UpperBound: ub, CumulativeCount: h.counts[i]}
	}
	return HistogramSnapshot{Buckets: buckets, Sum: h.sum, Count: h.count}
}

func (h *Histogram) labels() []string { return h.labelValues }

func (h *Histogram) series() Series {
	s := h.Snapshot()
	return Series{LabelValues: h.labelValues, Value: s.Sum, Histogram: &s}
}

// HistogramVec is a Histogram partitioned by label values.
type HistogramVec struct {
	*vec[*Histogram]
}

func newHistogramVec(desc *Desc) *HistogramVec {
	bounds := slices.Clone(desc.Buckets)
	return &HistogramVec{newVec(desc, func(lvs []string) *Histogram {
		return &Histogram{
			upperBounds: bounds,
			labelValues: lvs,
			counts:      make([]uint64, len(bounds)),
		}
	})}
}

// Desc returns the instrument descriptor.
func (v *HistogramVec) Desc() *Desc { return v.desc }

func (v *HistogramVec) snapshot() Family { return v.family() }

// GetMetricWithLabelValues returns the histogram for the label values.
func (v *HistogramVec) GetMetricWithLabelValues(lvs ...string) (*Histogram, error) {
	return v.get(lvs)
}

// WithLabelValues is GetMetricWithLabelValues that panics on a label
// count mismatch.
func (v *HistogramVec) WithLabelValues(lvs ...string) *Histogram {
	return v.must(lvs)
}
