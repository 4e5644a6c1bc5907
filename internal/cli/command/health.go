package command

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/vitals/internal/cli/connection"
	"github.com/yndnr/vitals/internal/cli/output"
)

type healthView struct {
	Status        string  `json:"status"`
	Time          string  `json:"time"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
}

type readinessView struct {
	Status        string   `json:"status"`
	Time          string   `json:"time"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	Reasons       []string `json:"reasons,omitempty"`
}

type systemView struct {
	Platform      string             `json:"platform"`
	Arch          string             `json:"arch"`
	GoVersion     string             `json:"go_version"`
	CPUCount      int                `json:"cpu_count"`
	Sampled       bool               `json:"sampled"`
	SampledAt     string             `json:"sampled_at,omitempty"`
	CPUPercent    float64            `json:"cpu_percent"`
	MemoryPercent float64            `json:"memory_percent"`
	DiskPercent   map[string]float64 `json:"disk_percent,omitempty"`
}

type detailedView struct {
	Status        string     `json:"status"`
	Time          string     `json:"time"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	Version       string     `json:"version,omitempty"`
	System        systemView `json:"system"`
	Issues        []string   `json:"issues"`
}

// HealthCommand returns the health command. Without a subcommand it
// checks GET /health.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server health",
		Action: healthCheck,
		Subcommands: []*cli.Command{
			{
				Name:   "live",
				Usage:  "Check liveness",
				Action: healthLive,
			},
			{
				Name:   "ready",
				Usage:  "Check readiness; exits non-zero when not ready",
				Action: healthReady,
			},
			{
				Name:    "detailed",
				Aliases: []string{"status"},
				Usage:   "Show host usage and threshold issues",
				Action:  healthDetailed,
			},
		},
	}
}

func healthCheck(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	var result healthView
	if _, err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if s.flags.Output != output.FormatTable {
		return s.render(result, nil)
	}
	s.printf("✓ Server is %s\n", result.Status)
	s.printf("  Target:  %s\n", s.client.BaseURL())
	s.printf("  Uptime:  %s\n", formatSeconds(result.UptimeSeconds))
	if result.Version != "" {
		s.printf("  Version: %s\n", result.Version)
	}
	return nil
}

func healthLive(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, "/health/live")
	if err != nil {
		return fmt.Errorf("liveness check failed: %w", err)
	}

	var result healthView
	_, parseErr := connection.ParseResponse(resp, &result)
	if result.Status != "" {
		if err := s.render(result, nil); err != nil {
			return err
		}
	}
	return parseErr
}

func healthReady(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, "/health/ready")
	if err != nil {
		return fmt.Errorf("readiness check failed: %w", err)
	}

	var result readinessView
	_, parseErr := connection.ParseResponse(resp, &result)
	if result.Status != "" {
		if err := s.render(result, nil); err != nil {
			return err
		}
	}

	var apiErr *connection.APIError
	if errors.As(parseErr, &apiErr) && result.Status != "" {
		return fmt.Errorf("server is not ready: %s", strings.Join(result.Reasons, "; "))
	}
	return parseErr
}

func healthDetailed(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, "/health/detailed")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	var result detailedView
	if _, err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return s.render(result, detailedTable(result, s.flags.Wide))
}

// detailedTable flattens the detailed report into FIELD/VALUE rows.
func detailedTable(d detailedView, wide bool) *output.Table {
	t := &output.Table{}
	t.SetHeaders("FIELD", "VALUE")
	t.AddRow("status", d.Status)
	t.AddRow("uptime", formatSeconds(d.UptimeSeconds))
	if d.Version != "" {
		t.AddRow("version", d.Version)
	}
	if wide {
		t.AddRow("platform", d.System.Platform+"/"+d.System.Arch)
		t.AddRow("go_version", d.System.GoVersion)
		t.AddRow("cpu_count", strconv.Itoa(d.System.CPUCount))
	}

	if !d.System.Sampled {
		t.AddRow("sampled", "no")
	} else {
		if wide {
			t.AddRow("sampled_at", d.System.SampledAt)
		}
		t.AddRow("cpu", formatPercent(d.System.CPUPercent))
		t.AddRow("memory", formatPercent(d.System.MemoryPercent))
		for _, mp := range slices.Sorted(maps.Keys(d.System.DiskPercent)) {
			t.AddRow("disk "+mp, formatPercent(d.System.DiskPercent[mp]))
		}
	}

	for _, issue := range d.Issues {
		t.AddRow("issue", issue)
	}
	return t
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func formatSeconds(sec float64) string {
	return time.Duration(sec * float64(time.Second)).Truncate(time.Second).String()
}
