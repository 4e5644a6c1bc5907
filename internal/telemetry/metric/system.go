package metric

// SystemMetrics is the instrument set written by the system sampler.
type SystemMetrics struct {
	CPUSeconds    *Gauge
	ResidentBytes *Gauge
	VirtualBytes  *Gauge
	StartTime     *Gauge
	OpenFDs       *Gauge
	Threads       *Gauge

	HostCPUPercent    *Gauge
	HostMemoryPercent *Gauge
	DiskPercent       *GaugeVec // mountpoint

	Process *Info
}

// NewSystemMetrics registers the process and host instruments on reg.
func NewSystemMetrics(reg *Registry) (*SystemMetrics, error) {
	s := &SystemMetrics{}

	gauges := []struct {
		dst        **Gauge
		name, help string
	}{
		{&s.CPUSeconds, "process_cpu_seconds_total", "Total user and system CPU time spent in seconds"},
		{&s.ResidentBytes, "process_resident_memory_bytes", "Resident memory size in bytes"},
		{&s.VirtualBytes, "process_virtual_memory_bytes", "Virtual memory size in bytes"},
		{&s.StartTime, "process_start_time_seconds", "Start time of the process since unix epoch in seconds"},
		{&s.OpenFDs, "process_open_fds", "Number of open file descriptors"},
		{&s.Threads, "process_threads", "Number of OS threads"},
		{&s.HostCPUPercent, "system_cpu_usage_percent", "System CPU usage percentage"},
		{&s.HostMemoryPercent, "system_memory_usage_percent", "System memory usage percentage"},
	}
	for _, g := range gauges {
		vec, err := reg.Gauge(g.name, g.help)
		if err != nil {
			return nil, err
		}
		*g.dst = vec.WithLabelValues()
	}

	var err error
	if s.DiskPercent, err = reg.Gauge("system_disk_usage_percent",
		"System disk usage percentage", "mountpoint"); err != nil {
		return nil, err
	}
	if s.Process, err = reg.Info("process", "Process information"); err != nil {
		return nil, err
	}
	return s, nil
}
