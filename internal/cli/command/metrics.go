package command

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/vitals/internal/cli/connection"
)

// sampleRow is one series from the exposition. Histograms report count
// and sum instead of a value.
type sampleRow struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  *float64          `json:"value,omitempty"`
	Count  *uint64           `json:"count,omitempty"`
	Sum    *float64          `json:"sum,omitempty"`
	Help   string            `json:"help,omitempty" table:"wide"`
}

// MetricsCommand returns the metrics command.
func MetricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Scrape the server's Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Metrics endpoint path",
				Value: "/metrics",
			},
			&cli.StringSliceFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Only show families whose name starts with this prefix (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the exposition as received",
			},
		},
		Action: metricsScrape,
	}
}

func metricsScrape(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, c.String("path"))
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	body, err := connection.ReadBody(resp)
	if err != nil {
		return err
	}

	if c.Bool("raw") {
		_, err := c.App.Writer.Write(body)
		return err
	}

	rows, err := parseExposition(body, c.StringSlice("name"))
	if err != nil {
		return err
	}
	return s.render(rows, nil)
}

// parseExposition parses the text format into rows, keeping only the
// families matching one of prefixes. Rows are ordered by family name,
// then by labelKey.
func parseExposition(body []byte, prefixes []string) ([]sampleRow, error) {
	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse metrics: %w", err)
	}

	rows := []sampleRow{}
	for _, name := range slices.Sorted(maps.Keys(families)) {
		if !matchesPrefix(name, prefixes) {
			continue
		}
		mf := families[name]
		typ := strings.ToLower(mf.GetType().String())

		series := make([]sampleRow, 0, len(mf.GetMetric()))
		for _, m := range mf.GetMetric() {
			row := sampleRow{Name: name, Type: typ, Help: mf.GetHelp()}
			if len(m.GetLabel()) > 0 {
				row.Labels = make(map[string]string, len(m.GetLabel()))
				for _, lp := range m.GetLabel() {
					row.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			fillValue(&row, mf.GetType(), m)
			series = append(series, row)
		}
		slices.SortStableFunc(series, func(a, b sampleRow) int {
			return strings.Compare(labelKey(a.Labels), labelKey(b.Labels))
		})
		rows = append(rows, series...)
	}
	return rows, nil
}

func fillValue(row *sampleRow, typ dto.MetricType, m *dto.Metric) {
	var v float64
	switch typ {
	case dto.MetricType_COUNTER:
		v = m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		v = m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		count, sum := m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
		row.Count, row.Sum = &count, &sum
		return
	case dto.MetricType_SUMMARY:
		count, sum := m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
		row.Count, row.Sum = &count, &sum
		return
	default:
		v = m.GetUntyped().GetValue()
	}
	row.Value = &v
}

func matchesPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// labelKey joins the name=value pairs sorted by name, each followed by a
// comma. Comparing keys orders series by their first differing label.
func labelKey(labels map[string]string) string {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}
