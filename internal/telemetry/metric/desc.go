package metric

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/prometheus/common/model"

	"github.com/yndnr/vitals/internal/core/domain"
)

// Kind identifies the instrument variant.
type Kind int

const (
	KindCounter Kind = iota + 1
	KindGauge
	KindHistogram
	KindInfo
)

// String returns the exposition type name. Info is exposed as a gauge.
func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

var labelNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Desc is the immutable shape of an instrument.
type Desc struct {
	Name       string
	Help       string
	Kind       Kind
	LabelNames []string
	// Buckets holds ascending upper bounds ending in +Inf (histograms only).
	Buckets []float64
}

// validate checks the descriptor and normalizes histogram buckets.
func (d *Desc) validate() error {
	if !model.IsValidLegacyMetricName(d.Name) {
		return domain.ErrInvalidArgument.WithDetailsf("invalid metric name %q", d.Name)
	}
	if d.Kind < KindCounter || d.Kind > KindInfo {
		return domain.ErrInvalidArgument.WithDetailsf("metric %q: unknown kind %d", d.Name, d.Kind)
	}

	seen := make(map[string]struct{}, len(d.LabelNames))
	for _, ln := range d.LabelNames {
		if !labelNameRE.MatchString(ln) || strings.HasPrefix(ln, "__") {
			return domain.ErrInvalidArgument.WithDetailsf("metric %q: invalid label name %q", d.Name, ln)
		}
		if d.Kind == KindHistogram && ln == model.BucketLabel {
			return domain.ErrInvalidArgument.WithDetailsf("metric %q: label %q is reserved for histograms", d.Name, ln)
		}
		if _, dup := seen[ln]; dup {
			return domain.ErrInvalidArgument.WithDetailsf("metric %q: duplicate label name %q", d.Name, ln)
		}
		seen[ln] = struct{}{}
	}

	switch d.Kind {
	case KindHistogram:
		buckets, err := NormalizeBuckets(d.Buckets)
		if err != nil {
			return fmt.Errorf("metric %q: %w", d.Name, err)
		}
		d.Buckets = buckets
	case KindInfo:
		if len(d.LabelNames) > 0 {
			return domain.ErrInvalidArgument.WithDetailsf("info %q takes no label names", d.Name)
		}
		fallthrough
	default:
		if len(d.Buckets) > 0 {
			return domain.ErrInvalidArgument.WithDetailsf("metric %q: buckets are only valid for histograms", d.Name)
		}
	}
	return nil
}

// sameShape reports whether two descriptors would register the same instrument.
func (d *Desc) sameShape(o *Desc) bool {
	return d.Name == o.Name &&
		d.Help == o.Help &&
		d.Kind == o.Kind &&
		slices.Equal(d.LabelNames, o.LabelNames) &&
		slices.Equal(d.Buckets, o.Buckets)
}

// NormalizeBuckets validates a bucket list and returns a copy that ends
// in +Inf. Bounds must be strictly ascending and not NaN.
func NormalizeBuckets(buckets []float64) ([]float64, error) {
	if len(buckets) == 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("histogram needs at least one bucket")
	}

	out := make([]float64, 0, len(buckets)+1)
	for i, b := range buckets {
		if math.IsNaN(b) {
			return nil, domain.ErrInvalidArgument.WithDetailsf("bucket %d is NaN", i)
		}
		if i > 0 && b <= buckets[i-1] {
			return nil, domain.ErrInvalidArgument.WithDetailsf("buckets not strictly ascending at index %d (%g <= %g)", i, b, buckets[i-1])
		}
		out = append(out, b)
	}
	if !math.IsInf(out[len(out)-1], +1) {
		out = append(out, math.Inf(+1))
	}
	return out, nil
}

// labelSeparator cannot appear in valid UTF-8 label values.
const labelSeparator = "\xff"

func labelKey(values []string) string {
	return strings.Join(values, labelSeparator)
}

func checkLabelValues(d *Desc, values []string) error {
	if len(values) != len(d.LabelNames) {
		return domain.ErrInvalidArgument.WithDetailsf(
			"metric %q: expected %d label values %v, got %d", d.Name, len(d.LabelNames), d.LabelNames, len(values))
	}
	return nil
}
