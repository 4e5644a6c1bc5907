package sampler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// ProcSource reads statistics from /proc for one process.
type ProcSource struct {
	fs  procfs.FS
	pid int

	mu      sync.Mutex
	lastCPU *procfs.CPUStat
}

// NewProcSource observes the current process through the default /proc mount.
func NewProcSource() (*ProcSource, error) {
	return NewProcSourceFor(procfs.DefaultMountPoint, os.Getpid())
}

// NewProcSourceFor observes pid through the procfs mounted at mountPoint.
func NewProcSourceFor(mountPoint string, pid int) (*ProcSource, error) {
	pfs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	return &ProcSource{fs: pfs, pid: pid}, nil
}

func (s *ProcSource) proc() (procfs.Proc, error) {
	p, err := s.fs.Proc(s.pid)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return procfs.Proc{}, fmt.Errorf("pid %d: %w", s.pid, ErrProcessGone)
		}
		return procfs.Proc{}, err
	}
	return p, nil
}

// ProcessStats implements Source.
func (s *ProcSource) ProcessStats() (ProcessStats, error) {
	p, err := s.proc()
	if err != nil {
		return ProcessStats{}, err
	}
	st, err := p.Stat()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ProcessStats{}, fmt.Errorf("pid %d: %w", s.pid, ErrProcessGone)
		}
		return ProcessStats{}, err
	}

	out := ProcessStats{
		CPUSeconds:    st.CPUTime(),
		ResidentBytes: float64(st.ResidentMemory()),
		VirtualBytes:  float64(st.VirtualMemory()),
		Threads:       st.NumThreads,
	}
	if start, err := st.StartTime(); err == nil {
		sec := int64(start)
		out.StartTime = time.Unix(sec, int64((start-float64(sec))*1e9))
	}
	return out, nil
}

// OpenFDs implements Source.
func (s *ProcSource) OpenFDs() (int, error) {
	p, err := s.proc()
	if err != nil {
		return 0, err
	}
	return p.FileDescriptorsLen()
}

// ProcessInfo implements Source. Fields that cannot be read are left empty.
func (s *ProcSource) ProcessInfo() (ProcessInfo, error) {
	p, err := s.proc()
	if err != nil {
		return ProcessInfo{}, err
	}

	info := ProcessInfo{
		PID:             s.pid,
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS,
		PlatformRelease: kernelRelease(),
	}
	if comm, err := p.Comm(); err == nil {
		info.Name = comm
	}
	if args, err := p.CmdLine(); err == nil {
		info.Cmdline = strings.Join(args, " ")
	}
	if cwd, err := p.Cwd(); err == nil {
		info.Cwd = cwd
	}
	return info, nil
}

// CPUPercent implements Source. The first call reports utilisation since
// boot; later calls report it since the previous call.
func (s *ProcSource) CPUPercent() (float64, error) {
	st, err := s.fs.Stat()
	if err != nil {
		return 0, err
	}
	cur := st.CPUTotal

	s.mu.Lock()
	prev := s.lastCPU
	s.lastCPU = &cur
	s.mu.Unlock()

	busy, total := cpuBusy(cur), cpuTotal(cur)
	if prev != nil {
		busy -= cpuBusy(*prev)
		total -= cpuTotal(*prev)
	}
	if total <= 0 {
		return 0, nil
	}
	return clampPercent(busy / total * 100), nil
}

func cpuTotal(c procfs.CPUStat) float64 {
	return c.User + c.Nice + c.System + c.Idle + c.Iowait + c.IRQ + c.SoftIRQ + c.Steal
}

func cpuBusy(c procfs.CPUStat) float64 {
	return cpuTotal(c) - c.Idle - c.Iowait
}

// MemoryPercent implements Source.
func (s *ProcSource) MemoryPercent() (float64, error) {
	mi, err := s.fs.Meminfo()
	if err != nil {
		return 0, err
	}
	if mi.MemTotal == nil || *mi.MemTotal == 0 {
		return 0, errors.New("meminfo: MemTotal missing")
	}

	total := float64(*mi.MemTotal)
	var avail float64
	switch {
	case mi.MemAvailable != nil:
		avail = float64(*mi.MemAvailable)
	default:
		for _, v := range []*uint64{mi.MemFree, mi.Buffers, mi.Cached} {
			if v != nil {
				avail += float64(*v)
			}
		}
	}
	return clampPercent((total - avail) / total * 100), nil
}

// DiskPercent implements Source.
func (s *ProcSource) DiskPercent(mountpoint string) (float64, error) {
	return diskUsagePercent(mountpoint)
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
