package handler

import (
	"fmt"
	"maps"
	"net/http"
	"runtime"
	"slices"
	"time"

	"github.com/yndnr/vitals/internal/core/domain"
	"github.com/yndnr/vitals/internal/infra/buildinfo"
	"github.com/yndnr/vitals/internal/server/config"
	"github.com/yndnr/vitals/internal/telemetry/sampler"
)

// Health statuses reported by GET /health/detailed.
const (
	StatusHealthy   = "healthy"
	StatusWarning   = "warning"
	StatusUnhealthy = "unhealthy"
)

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// handleHealth handles GET /health. It answers 200 whenever the process
// can serve requests.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, "", HealthResponse{
		Status:        StatusHealthy,
		Time:          h.timestamp(),
		UptimeSeconds: h.uptime().Seconds(),
		Version:       buildinfo.Version,
	})
}

// handleLive handles GET /health/live. It fails only when the system
// sampler stopped on a fatal error.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "alive",
		Time:          h.timestamp(),
		UptimeSeconds: h.uptime().Seconds(),
	}
	if h.host != nil {
		if err := h.host.Err(); err != nil {
			resp.Status = "dead"
			h.writeError(w, r, http.StatusServiceUnavailable,
				domain.ErrServiceUnavailable.Code, "sampler stopped: "+err.Error(), resp)
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, "", resp)
}

// handleReady handles GET /health/ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	uptime := h.uptime()
	resp := ReadinessResponse{
		Status:        "ready",
		Time:          h.timestamp(),
		UptimeSeconds: uptime.Seconds(),
	}

	if uptime < h.health.ReadyMinUptime {
		resp.Reasons = append(resp.Reasons,
			fmt.Sprintf("warming up: uptime %s below %s", uptime.Truncate(time.Millisecond), h.health.ReadyMinUptime))
	}
	if h.host != nil {
		if err := h.host.Err(); err != nil {
			resp.Reasons = append(resp.Reasons, "sampler stopped: "+err.Error())
		}
		if host, ok := h.host.LastHost(); ok && host.MemoryPercent > h.health.MemoryCritical {
			resp.Reasons = append(resp.Reasons,
				fmt.Sprintf("memory usage %.1f%% above %.1f%%", host.MemoryPercent, h.health.MemoryCritical))
		}
	}

	if len(resp.Reasons) > 0 {
		resp.Status = "not_ready"
		h.writeError(w, r, http.StatusServiceUnavailable,
			domain.ErrServiceUnavailable.Code, "not ready", resp)
		return
	}
	h.writeJSON(w, r, http.StatusOK, "", resp)
}

// handleDetailed handles GET /health/detailed. The overall status is in
// the body; the HTTP status is always 200.
func (h *Handler) handleDetailed(w http.ResponseWriter, r *http.Request) {
	resp := DetailedHealthResponse{
		Status:        StatusHealthy,
		Time:          h.timestamp(),
		UptimeSeconds: h.uptime().Seconds(),
		Version:       buildinfo.Version,
		System: SystemResponse{
			Platform:  runtime.GOOS,
			Arch:      runtime.GOARCH,
			GoVersion: runtime.Version(),
			CPUCount:  runtime.NumCPU(),
		},
		Issues: []string{},
	}

	if h.host != nil {
		if host, ok := h.host.LastHost(); ok {
			resp.System.Sampled = true
			resp.System.SampledAt = host.SampledAt.UTC().Format(time.RFC3339)
			resp.System.CPUPercent = host.CPUPercent
			resp.System.MemoryPercent = host.MemoryPercent
			resp.System.DiskPercent = host.DiskPercent
			resp.Status, resp.Issues = evaluate(host, h.health)
		}
		if err := h.host.Err(); err != nil {
			resp.Status = StatusUnhealthy
			resp.Issues = append(resp.Issues, "sampler stopped: "+err.Error())
		}
	}

	h.writeJSON(w, r, http.StatusOK, "", resp)
}

// evaluate grades host readings against the thresholds. Crossing a
// critical threshold makes the result unhealthy; crossing a warning
// threshold makes it a warning.
func evaluate(host sampler.HostStats, th config.HealthSection) (string, []string) {
	status := StatusHealthy
	issues := []string{}

	check := func(what string, v, warning, critical float64) {
		switch {
		case v > critical:
			status = StatusUnhealthy
			issues = append(issues, fmt.Sprintf("critical %s usage: %.1f%%", what, v))
		case v > warning:
			if status != StatusUnhealthy {
				status = StatusWarning
			}
			issues = append(issues, fmt.Sprintf("high %s usage: %.1f%%", what, v))
		}
	}

	check("CPU", host.CPUPercent, th.CPUWarning, th.CPUCritical)
	check("memory", host.MemoryPercent, th.MemoryWarning, th.MemoryCritical)

	for _, mp := range slices.Sorted(maps.Keys(host.DiskPercent)) {
		check("disk "+mp, host.DiskPercent[mp], th.DiskWarning, th.DiskCritical)
	}

	return status, issues
}
