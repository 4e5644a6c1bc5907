package metric

import (
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/proto"
)

// Gather converts the current snapshot into client_model families so the
// registry satisfies prometheus.Gatherer. Families without series are
// omitted; labels keep their declared order.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	snap := r.Snapshot()
	out := make([]*dto.MetricFamily, 0, len(snap))
	for _, f := range snap {
		if len(f.Series) == 0 {
			continue
		}
		out = append(out, toFamily(f))
	}
	return out, nil
}

func toFamily(f Family) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name:   proto.String(f.Name),
		Help:   proto.String(f.Help),
		Metric: make([]*dto.Metric, 0, len(f.Series)),
	}
	switch f.Kind {
	case KindCounter:
		mf.Type = dto.MetricType_COUNTER.Enum()
	case KindHistogram:
		mf.Type = dto.MetricType_HISTOGRAM.Enum()
	default:
		mf.Type = dto.MetricType_GAUGE.Enum()
	}

	for _, s := range f.Series {
		m := &dto.Metric{Label: toLabels(f.LabelNames, s.LabelValues)}
		switch f.Kind {
		case KindCounter:
			m.Counter = &dto.Counter{Value: proto.Float64(s.Value)}
		case KindHistogram:
			m.Histogram = toHistogram(s.Histogram)
		default:
			m.Gauge = &dto.Gauge{Value: proto.Float64(s.Value)}
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}

func toLabels(names, values []string) []*dto.LabelPair {
	if len(names) == 0 {
		return nil
	}
	pairs := make([]*dto.LabelPair, len(names))
	for i, n := range names {
		pairs[i] = &dto.LabelPair{Name: proto.String(n), Value: proto.String(values[i])}
	}
	return pairs
}

func toHistogram(h *HistogramSnapshot) *dto.Histogram {
	out := &dto.Histogram{
		SampleCount: proto.Uint64(h.Count),
		SampleSum:   proto.Float64(h.Sum),
		Bucket:      make([]*dto.Bucket, 0, len(h.Buckets)),
	}
	for _, b := range h.Buckets {
		out.Bucket = append(out.Bucket, &dto.Bucket{
			UpperBound:      proto.Float64(b.UpperBound),
			CumulativeCount: proto.Uint64(b.CumulativeCount),
		})
	}
	return out
}
