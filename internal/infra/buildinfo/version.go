package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

var (
	vcsOnce sync.Once
	vcs     map[string]string
)

func vcsSettings() map[string]string {
	vcsOnce.Do(func() {
		vcs = make(map[string]string)
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range bi.Settings {
			vcs[s.Key] = s.Value
		}
	})
	return vcs
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	settings := vcsSettings()
	if info.Commit == "unknown" {
		if rev := settings["vcs.revision"]; rev != "" {
			info.Commit = rev
		}
	}
	if info.BuildTime == "unknown" {
		if ts := settings["vcs.time"]; ts != "" {
			info.BuildTime = ts
		}
	}
	info.Modified = settings["vcs.modified"] == "true"
	return info
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Version + " (" + info.Commit + ") built at " + info.BuildTime + " with " + info.GoVersion
}

// Fields returns the information as label pairs for an info metric.
func (i Info) Fields() map[string]string {
	return map[string]string{
		"version":    i.Version,
		"commit":     i.Commit,
		"build_time": i.BuildTime,
		"go_version": i.GoVersion,
		"modified":   strconv.FormatBool(i.Modified),
	}
}
