package sampler

import (
	"errors"
	"strconv"
	"time"
)

// ErrProcessGone means the observed process no longer exists. It is the
// only error that stops the sampling loop.
var ErrProcessGone = errors.New("sampler: process gone")

// Source reads the raw statistics. Every method may block on OS calls.
type Source interface {
	ProcessStats() (ProcessStats, error)
	OpenFDs() (int, error)
	ProcessInfo() (ProcessInfo, error)
	// CPUPercent is host-wide CPU utilisation since the previous call.
	CPUPercent() (float64, error)
	MemoryPercent() (float64, error)
	DiskPercent(mountpoint string) (float64, error)
}

// ProcessStats are the per-iteration process readings.
type ProcessStats struct {
	CPUSeconds    float64
	ResidentBytes float64
	VirtualBytes  float64
	Threads       int
	StartTime     time.Time
}

// ProcessInfo is the static description of the process.
type ProcessInfo struct {
	PID             int
	Name            string
	Cmdline         string
	Cwd             string
	GoVersion       string
	Platform        string
	PlatformRelease string
}

// Fields returns the info as label pairs.
func (i ProcessInfo) Fields() map[string]string {
	return map[string]string{
		"pid":              strconv.Itoa(i.PID),
		"name":             i.Name,
		"cmdline":          i.Cmdline,
		"cwd":              i.Cwd,
		"go_version":       i.GoVersion,
		"platform":         i.Platform,
		"platform_release": i.PlatformRelease,
	}
}

// HostStats is the latest host-wide reading. A field is zero when its
// statistic could not be read.
type HostStats struct {
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   map[string]float64 // by mountpoint
	SampledAt     time.Time
}
