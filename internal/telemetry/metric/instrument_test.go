package metric

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/yndnr/vitals/internal/core/domain"
)

func TestCounter_Add(t *testing.T) {
	reg := NewRegistry()
	c, err := reg.Counter("jobs_total", "Jobs processed", "queue")
	if err != nil {
		t.Fatalf("Counter() error = %v", err)
	}

	child := c.WithLabelValues("default")
	amounts := []float64{0, 1, 2.5, 0.25, 10}
	var want float64
	for _, a := range amounts {
		if err := child.Add(a); err != nil {
			t.Fatalf("Add(%v) error = %v", a, err)
		}
		want += a
	}
	child.Inc()
	want++

	if got := child.Value(); got != want {
		t.Errorf("Value() = %v, want %v", got, want)
	}
}

func TestCounter_AddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"negative", -1},
		{"tiny negative", -1e-9},
		{"NaN", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			c, _ := reg.Counter("c_total", "c")
			child := c.WithLabelValues()
			child.Inc()

			err := child.Add(tt.value)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("Add(%v) error = %v, want ErrInvalidArgument", tt.value, err)
			}
			if got := child.Value(); got != 1 {
				t.Errorf("Value() = %v after rejected Add, want 1", got)
			}
		})
	}
}

func TestCounter_ConcurrentInc(t *testing.T) {
	const (
		workers   = 16
		perWorker = 1000
	)

	reg := NewRegistry()
	c, _ := reg.Counter("hits_total", "Hits", "route")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.WithLabelValues("/data").Inc()
			}
		}()
	}
	wg.Wait()

	if got, want := c.WithLabelValues("/data").Value(), float64(workers*perWorker); got != want {
		t.Errorf("Value() = %v, want %v", got, want)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 child", c.Len())
	}
}

func TestGauge(t *testing.T) {
	reg := NewRegistry()
	g, _ := reg.Gauge("queue_depth", "Depth", "queue")
	child := g.WithLabelValues("q1")

	child.Set(10)
	child.Inc()
	child.Dec()
	child.Dec()
	child.Add(2.5)
	child.Sub(0.5)

	if got := child.Value(); got != 11 {
		t.Errorf("Value() = %v, want 11", got)
	}

	child.Set(-3)
	if got := child.Value(); got != -3 {
		t.Errorf("Value() = %v, want -3", got)
	}
}

func TestGauge_ConcurrentIncDec(t *testing.T) {
	reg := NewRegistry()
	g, _ := reg.Gauge("inflight", "In flight")
	child := g.WithLabelValues()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				child.Inc()
				child.Dec()
			}
		}()
	}
	wg.Wait()

	if got := child.Value(); got != 0 {
		t.Errorf("Value() = %v, want 0", got)
	}
}

func TestHistogram_Observe(t *testing.T) {
	reg := NewRegistry()
	h, err := reg.Histogram("latency_seconds", "Latency", []float64{1, 2, 5})
	if err != nil {
		t.Fatalf("Histogram() error = %v", err)
	}

	child := h.WithLabelValues()
	for _, v := range []float64{0.5, 1, 1.5, 3, 10, math.NaN()} {
		child.Observe(v)
	}

	snap := child.Snapshot()
	want := []Bucket{
		{UpperBound: 1, CumulativeCount: 2},
		{UpperBound: 2, CumulativeCount: 3},
		{UpperBound: 5, CumulativeCount: 4},
		{UpperBound: math.Inf(+1), CumulativeCount: 5},
	}
	if len(snap.Buckets) != len(want) {
		t.Fatalf("len(Buckets) = %d, want %d", len(snap.Buckets), len(want))
	}
	for i, b := range want {
		if snap.Buckets[i] != b {
			t.Errorf("Buckets[%d] = %+v, want %+v", i, snap.Buckets[i], b)
		}
	}
	if snap.Count != 5 {
		t.Errorf("Count = %d, want 5", snap.Count)
	}
	if snap.Sum != 16 {
		t.Errorf("Sum = %v, want 16", snap.Sum)
	}
}

func TestHistogram_BucketsMatchObservations(t *testing.T) {
	bounds := []float64{0.01, 0.1, 1, 10}
	values := []float64{-1, 0, 0.01, 0.05, 0.1, 0.5, 1, 9.99, 10, 10.01, 1e6}

	reg := NewRegistry()
	h, _ := reg.Histogram("h", "h", bounds)
	child := h.WithLabelValues()
	var sum float64
	for _, v := range values {
		child.Observe(v)
		sum += v
	}

	snap := child.Snapshot()
	for _, b := range snap.Buckets {
		var want uint64
		for _, v := range values {
			if v <= b.UpperBound {
				want++
			}
		}
		if b.CumulativeCount != want {
			t.Errorf("bucket le=%v count = %d, want %d", b.UpperBound, b.CumulativeCount, want)
		}
	}
	if snap.Count != uint64(len(values)) {
		t.Errorf("Count = %d, want %d", snap.Count, len(values))
	}
	if snap.Sum != sum {
		t.Errorf("Sum = %v, want %v", snap.Sum, sum)
	}
}

func TestHistogram_ConcurrentObserve(t *testing.T) {
	reg := NewRegistry()
	h, _ := reg.Histogram("h", "h", []float64{1})
	child := h.WithLabelValues()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				child.Observe(0.5)
			}
		}()
	}

	// Snapshots taken mid-flight must never split an observation.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s := child.Snapshot()
			if s.Buckets[0].CumulativeCount != s.Count || s.Buckets[1].CumulativeCount != s.Count {
				t.Errorf("inconsistent snapshot: %+v", s)
				return
			}
		}
	}()
	wg.Wait()
	<-done

	if got := child.Snapshot().Count; got != 8000 {
		t.Errorf("Count = %d, want 8000", got)
	}
}

func TestVec_LabelMismatch(t *testing.T) {
	reg := NewRegistry()
	c, _ := reg.Counter("c_total", "c", "a", "b")

	if _, err := c.GetMetricWithLabelValues("only-one"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("GetMetricWithLabelValues() error = %v, want ErrInvalidArgument", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("WithLabelValues() with wrong arity did not panic")
		}
	}()
	c.WithLabelValues("x", "y", "z")
}

func TestInfo(t *testing.T) {
	reg := NewRegistry()
	info, err := reg.Info("build", "Build information")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}

	if f := info.snapshot(); len(f.Series) != 0 {
		t.Errorf("unset info has %d series, want 0", len(f.Series))
	}

	info.Set(map[string]string{"version": "1.0", "commit": "abc", "bad-key": "x"})
	f := info.snapshot()
	if f.Name != "build_info" {
		t.Errorf("Name = %q, want build_info", f.Name)
	}
	if got := f.LabelNames; len(got) != 2 || got[0] != "commit" || got[1] != "version" {
		t.Errorf("LabelNames = %v, want [commit version]", got)
	}
	if len(f.Series) != 1 || f.Series[0].Value != 1 {
		t.Fatalf("Series = %+v, want one series with value 1", f.Series)
	}
	if _, ok := info.Fields()["bad-key"]; ok {
		t.Error("invalid label name kept in info fields")
	}
}

func TestNormalizeBuckets(t *testing.T) {
	inf := math.Inf(+1)
	tests := []struct {
		name    string
		in      []float64
		want    []float64
		wantErr bool
	}{
		{"appends inf", []float64{1, 2}, []float64{1, 2, inf}, false},
		{"keeps inf", []float64{1, inf}, []float64{1, inf}, false},
		{"only inf", []float64{inf}, []float64{inf}, false},
		{"empty", nil, nil, true},
		{"descending", []float64{2, 1}, nil, true},
		{"duplicate", []float64{1, 1}, nil, true},
		{"NaN", []float64{1, math.NaN()}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBuckets(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeBuckets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeBuckets() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("NormalizeBuckets()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
