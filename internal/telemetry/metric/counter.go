package metric

import (
	"math"
	"sync/atomic"

	"github.com/yndnr/vitals/internal/core/domain"
)

// Counter is a monotonically non-decreasing value for one label tuple.
type Counter struct {
	bits        atomic.Uint64
	labelValues []string
}

// Inc adds one.
func (c *Counter) Inc() {
	addFloat(&c.bits, 1)
}

// Add adds v. Negative or NaN amounts are rejected and leave the
// counter untouched.
func (c *Counter) Add(v float64) error {
	if v < 0 || math.IsNaN(v) {
		return domain.ErrInvalidArgument.WithDetailsf("counter increment must be >= 0, got %g", v)
	}
	addFloat(&c.bits, v)
	return nil
}

// Value returns the current total.
func (c *Counter) Value() float64 {
	return math.Float64frombits(c.bits.Load())
}

func (c *Counter) labels() []string { return c.labelValues }

func (c *Counter) series() Series {
	return Series{LabelValues: c.labelValues, Value: c.Value()}
}

// CounterVec is a Counter partitioned by label values.
type CounterVec struct {
	*vec[*Counter]
}

func newCounterVec(desc *Desc) *CounterVec {
	return &CounterVec{newVec(desc, func(lvs []string) *Counter {
		return &Counter{labelValues: lvs}
	})}
}

// Desc returns the instrument descriptor.
func (v *CounterVec) Desc() *Desc { return v.desc }

func (v *CounterVec) snapshot() Family { return v.family() }

// GetMetricWithLabelValues returns the counter for the label values.
func (v *CounterVec) GetMetricWithLabelValues(lvs ...string) (*Counter, error) {
	return v.get(lvs)
}

// WithLabelValues is GetMetricWithLabelValues that panics on a label
// count mismatch.
func (v *CounterVec) WithLabelValues(lvs ...string) *Counter {
	return v.must(lvs)
}

// addFloat atomically adds delta to a float64 stored as bits.
func addFloat(bits *atomic.Uint64, delta float64) {
	for {
		old := bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if bits.CompareAndSwap(old, next) {
			return
		}
	}
}
