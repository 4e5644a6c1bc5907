package metric

import (
	"math"
	"sync/atomic"
	"time"
)

// Gauge is an arbitrary value for one label tuple. Concurrent writers
// resolve last-write-wins; Inc/Dec/Add are atomic read-modify-writes.
type Gauge struct {
	bits        atomic.Uint64
	labelValues []string
}

// Set replaces the value.
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// SetToCurrentTime sets the value to the current Unix time in seconds.
func (g *Gauge) SetToCurrentTime() {
	g.Set(float64(time.Now().UnixNano()) / 1e9)
}

// Inc adds one.
func (g *Gauge) Inc() { addFloat(&g.bits, 1) }

// Dec subtracts one.
func (g *Gauge) Dec() { addFloat(&g.bits, -1) }

// Add adds v (which may be negative).
func (g *Gauge) Add(v float64) { addFloat(&g.bits, v) }

// Sub subtracts v.
func (g *Gauge) Sub(v float64) { addFloat(&g.bits, -v) }

// Value returns the current value.
func (g *Gauge) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}

func (g *Gauge) labels() []string { return g.labelValues }

func (g *Gauge) series() Series {
	return Series{LabelValues: g.labelValues, Value: g.Value()}
}

// GaugeVec is a Gauge partitioned by label values.
type GaugeVec struct {
	*vec[*Gauge]
}

func newGaugeVec(desc *Desc) *GaugeVec {
	return &GaugeVec{newVec(desc, func(lvs []string) *Gauge {
		return &Gauge{labelValues: lvs}
	})}
}

// Desc returns the instrument descriptor.
func (v *GaugeVec) Desc() *Desc { return v.desc }

func (v *GaugeVec) snapshot() Family { return v.family() }

// GetMetricWithLabelValues returns the gauge for the label values.
func (v *GaugeVec) GetMetricWithLabelValues(lvs ...string) (*Gauge, error) {
	return v.get(lvs)
}

// WithLabelValues is GetMetricWithLabelValues that panics on a label
// count mismatch.
func (v *GaugeVec) WithLabelValues(lvs ...string) *Gauge {
	return v.must(lvs)
}
