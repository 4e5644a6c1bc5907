package sampler

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/vitals/internal/telemetry/logger"
	"github.com/yndnr/vitals/internal/telemetry/metric"
)

// DefaultInterval is the pause between two sampling iterations.
const DefaultInterval = 5 * time.Second

// State is the lifecycle state of a Sampler.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithInterval sets the sampling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMountpoints sets the filesystems whose usage is reported.
func WithMountpoints(mps ...string) Option {
	return func(s *Sampler) { s.mountpoints = mps }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// WithClock overrides the time source for HostStats.SampledAt.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// Sampler polls a Source and writes into SystemMetrics.
type Sampler struct {
	sys         *metric.SystemMetrics
	src         Source
	interval    time.Duration
	mountpoints []string
	logger      logger.Logger
	now         func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	infoSet  atomic.Bool
	startSet atomic.Bool

	hostMu sync.RWMutex
	host   HostStats
	hasRun bool
}

// New creates a stopped Sampler.
func New(sys *metric.SystemMetrics, src Source, opts ...Option) *Sampler {
	s := &Sampler{
		sys:         sys,
		src:         src,
		interval:    DefaultInterval,
		mountpoints: []string{"/"},
		logger:      logger.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.done = make(chan struct{})
	close(s.done)
	return s
}

// Start launches the background loop. It is a no-op unless the sampler
// is Stopped. The loop runs until Stop, cancellation of ctx, or
// ErrProcessGone.
func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return
	}
	s.state = StateStarting
	s.err = nil

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(loopCtx, done)
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		s.cancel()
		s.cancel = nil
		s.mu.Unlock()
	}()

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()
	s.logger.Info("system sampler started", "interval", s.interval.String(), "mountpoints", s.mountpoints)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			if errors.Is(err, ErrProcessGone) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				s.logger.Error("system sampler stopped", "error", err)
				return
			}
		}

		select {
		case <-ctx.Done():
			s.logger.Info("system sampler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the loop and waits for it to exit.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

// Done is closed when the current loop has exited. It is closed already
// if the sampler was never started.
func (s *Sampler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// State returns the current lifecycle state.
func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that ended the last loop, if it ended fatally.
func (s *Sampler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastHost returns the latest host readings and whether any iteration has
// completed.
func (s *Sampler) LastHost() (HostStats, bool) {
	s.hostMu.RLock()
	defer s.hostMu.RUnlock()

	h := s.host
	h.DiskPercent = maps.Clone(s.host.DiskPercent)
	return h, s.hasRun
}

// RunOnce performs one sampling iteration synchronously. Failures reading
// individual statistics are logged and skipped; only ErrProcessGone and
// ctx cancellation are returned.
func (s *Sampler) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ps, err := s.src.ProcessStats()
	switch {
	case errors.Is(err, ErrProcessGone):
		return err
	case err != nil:
		s.skip("process_stats", err)
	default:
		s.sys.CPUSeconds.Set(ps.CPUSeconds)
		s.sys.ResidentBytes.Set(ps.ResidentBytes)
		s.sys.VirtualBytes.Set(ps.VirtualBytes)
		s.sys.Threads.Set(float64(ps.Threads))
		if !ps.StartTime.IsZero() && s.startSet.CompareAndSwap(false, true) {
			s.sys.StartTime.Set(float64(ps.StartTime.UnixNano()) / 1e9)
		}
	}

	if n, err := s.src.OpenFDs(); err != nil {
		s.skip("open_fds", err)
	} else {
		s.sys.OpenFDs.Set(float64(n))
	}

	if !s.infoSet.Load() {
		if info, err := s.src.ProcessInfo(); err != nil {
			s.skip("process_info", err)
		} else if s.infoSet.CompareAndSwap(false, true) {
			s.sys.Process.Set(info.Fields())
		}
	}

	host := HostStats{DiskPercent: make(map[string]float64, len(s.mountpoints))}
	if v, err := s.src.CPUPercent(); err != nil {
		s.skip("cpu_percent", err)
	} else {
		host.CPUPercent = v
		s.sys.HostCPUPercent.Set(v)
	}
	if v, err := s.src.MemoryPercent(); err != nil {
		s.skip("memory_percent", err)
	} else {
		host.MemoryPercent = v
		s.sys.HostMemoryPercent.Set(v)
	}
	for _, mp := range s.mountpoints {
		v, err := s.src.DiskPercent(mp)
		if err != nil {
			s.skip("disk_percent", err, "mountpoint", mp)
			continue
		}
		host.DiskPercent[mp] = v
		s.sys.DiskPercent.WithLabelValues(mp).Set(v)
	}
	host.SampledAt = s.now()

	s.hostMu.Lock()
	s.host = host
	s.hasRun = true
	s.hostMu.Unlock()
	return nil
}

func (s *Sampler) skip(stat string, err error, args ...any) {
	s.logger.Debug("sample skipped", append([]any{"stat", stat, "error", err}, args...)...)
}
