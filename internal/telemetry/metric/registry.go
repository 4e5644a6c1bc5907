package metric

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/vitals/internal/core/domain"
)

// Instrument is a registered metric of any kind.
type Instrument interface {
	Desc() *Desc
	snapshot() Family
}

// Family is the point-in-time state of one instrument.
type Family struct {
	Name       string
	Help       string
	Kind       Kind
	LabelNames []string
	Series     []Series
}

// Series is one label tuple of a family.
type Series struct {
	LabelValues []string
	// Value is the counter/gauge value, or the sum for histograms.
	Value     float64
	Histogram *HistogramSnapshot
}

// HistogramSnapshot is a consistent copy of one histogram child.
type HistogramSnapshot struct {
	Buckets []Bucket
	Sum     float64
	Count   uint64
}

// Bucket is a cumulative bucket count.
type Bucket struct {
	UpperBound      float64
	CumulativeCount uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLatencyBuckets sets the bucket bounds (seconds) of the request
// duration histogram created by Init.
func WithLatencyBuckets(b []float64) Option {
	return func(r *Registry) { r.latencyBuckets = slices.Clone(b) }
}

// WithSizeBuckets sets the bucket bounds (bytes) of the request and
// response size histograms created by Init.
func WithSizeBuckets(b []float64) Option {
	return func(r *Registry) { r.sizeBuckets = slices.Clone(b) }
}

// WithClock overrides the time source used by the instrument sets.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry owns every instrument by exposition name.
//
// Structural changes (Register) and Snapshot share one RWMutex. Value
// updates never touch it: instruments synchronize themselves.
type Registry struct {
	mu          sync.RWMutex
	instruments map[string]Instrument

	latencyBuckets []float64
	sizeBuckets    []float64
	now            func() time.Time

	initMu sync.Mutex
	inst   atomic.Pointer[Instruments]
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		instruments:    make(map[string]Instrument),
		latencyBuckets: DefaultLatencyBuckets,
		sizeBuckets:    DefaultSizeBuckets,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// exposedName is the family name an instrument appears under.
func exposedName(d *Desc) string {
	if d.Kind == KindInfo && !strings.HasSuffix(d.Name, "_info") {
		return d.Name + "_info"
	}
	return d.Name
}

// Register adds an instrument described by desc. Registering the same
// shape again returns the existing handle; a different shape under the
// same name fails with domain.ErrDuplicateMetric.
func (r *Registry) Register(desc Desc) (Instrument, error) {
	desc.LabelNames = slices.Clone(desc.LabelNames)
	if err := desc.validate(); err != nil {
		return nil, err
	}
	name := exposedName(&desc)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.instruments[name]; ok {
		if existing.Desc().sameShape(&desc) {
			return existing, nil
		}
		return nil, domain.ErrDuplicateMetric.WithDetailsf(
			"%q already registered as %s", name, existing.Desc().Kind)
	}

	var inst Instrument
	switch desc.Kind {
	case KindCounter:
		inst = newCounterVec(&desc)
	case KindGauge:
		inst = newGaugeVec(&desc)
	case KindHistogram:
		inst = newHistogramVec(&desc)
	case KindInfo:
		inst = newInfo(&desc)
	}
	r.instruments[name] = inst
	return inst, nil
}

// Counter registers (or returns) a counter.
func (r *Registry) Counter(name, help string, labelNames ...string) (*CounterVec, error) {
	inst, err := r.Register(Desc{Name: name, Help: help, Kind: KindCounter, LabelNames: labelNames})
	if err != nil {
		return nil, err
	}
	return inst.(*CounterVec), nil
}

// Gauge registers (or returns) a gauge.
func (r *Registry) Gauge(name, help string, labelNames ...string) (*GaugeVec, error) {
	inst, err := r.Register(Desc{Name: name, Help: help, Kind: KindGauge, LabelNames: labelNames})
	if err != nil {
		return nil, err
	}
	return inst.(*GaugeVec), nil
}

// Histogram registers (or returns) a histogram. A trailing +Inf bound is
// added when buckets do not end in one.
func (r *Registry) Histogram(name, help string, buckets []float64, labelNames ...string) (*HistogramVec, error) {
	inst, err := r.Register(Desc{Name: name, Help: help, Kind: KindHistogram, LabelNames: labelNames, Buckets: buckets})
	if err != nil {
		return nil, err
	}
	return inst.(*HistogramVec), nil
}

// Info registers (or returns) an info instrument exposed as <name>_info.
func (r *Registry) Info(name, help string) (*Info, error) {
	inst, err := r.Register(Desc{Name: name, Help: help, Kind: KindInfo})
	if err != nil {
		return nil, err
	}
	return inst.(*Info), nil
}

// Get looks an instrument up by its exposition name.
func (r *Registry) Get(name string) (Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if inst, ok := r.instruments[name]; ok {
		return inst, nil
	}
	return nil, domain.ErrMetricNotFound.WithDetails(name)
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instruments)
}

// Snapshot returns every family sorted by name. Each child is read
// atomically; children visited later may reflect newer updates.
func (r *Registry) Snapshot() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	families := make([]Family, 0, len(r.instruments))
	for _, inst := range r.instruments {
		families = append(families, inst.snapshot())
	}
	slices.SortFunc(families, func(a, b Family) int {
		return strings.Compare(a.Name, b.Name)
	})
	return families
}

// Instruments is the fixed instrument set the server records into.
type Instruments struct {
	HTTP   *HTTPMetrics
	System *SystemMetrics
}

// Init creates the HTTP and system instrument sets exactly once. Racing
// callers all receive the same *Instruments.
func (r *Registry) Init() (*Instruments, error) {
	if inst := r.inst.Load(); inst != nil {
		return inst, nil
	}

	r.initMu.Lock()
	defer r.initMu.Unlock()

	if inst := r.inst.Load(); inst != nil {
		return inst, nil
	}

	httpMetrics, err := NewHTTPMetrics(r, r.latencyBuckets, r.sizeBuckets, r.now)
	if err != nil {
		return nil, err
	}
	systemMetrics, err := NewSystemMetrics(r)
	if err != nil {
		return nil, err
	}

	inst := &Instruments{HTTP: httpMetrics, System: systemMetrics}
	r.inst.Store(inst)
	return inst, nil
}

// Instruments returns the set created by Init, or nil before Init.
func (r *Registry) Instruments() *Instruments {
	return r.inst.Load()
}
