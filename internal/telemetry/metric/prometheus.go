package metric

import (
	"bytes"
	"net/http"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/yndnr/vitals/internal/telemetry/logger"
)

// HandlerOpts configures the exposition handler.
type HandlerOpts struct {
	// Extra gatherers whose families are appended to the registry's.
	// A family whose name the registry already exposes is skipped.
	Extra []prometheus.Gatherer

	// Logger receives gather and encode failures. Defaults to logger.Default().
	Logger logger.Logger
}

// Handler serves the registry in the Prometheus exposition format
// negotiated from the Accept header (text by default). The response is
// fully encoded before anything is written, so a failure yields a clean
// 500 rather than a truncated body.
func Handler(reg *Registry, opts HandlerOpts) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		families, err := gatherAll(reg, opts.Extra, log)
		if err != nil {
			log.Error("gather metrics failed", "error", err)
			http.Error(w, "error gathering metrics: "+err.Error(), http.StatusInternalServerError)
			return
		}

		format := expfmt.Negotiate(r.Header)
		var buf bytes.Buffer
		enc := expfmt.NewEncoder(&buf, format)
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				log.Error("encode metrics failed", "family", mf.GetName(), "error", err)
				http.Error(w, "error encoding metrics: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if closer, ok := enc.(expfmt.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Error("close metrics encoder failed", "error", err)
				http.Error(w, "error encoding metrics: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", string(format))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})
}

func gatherAll(reg *Registry, extra []prometheus.Gatherer, log logger.Logger) ([]*dto.MetricFamily, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return families, nil
	}

	seen := make(map[string]struct{}, len(families))
	for _, mf := range families {
		seen[mf.GetName()] = struct{}{}
	}
	for _, g := range extra {
		mfs, err := g.Gather()
		if err != nil {
			return nil, err
		}
		for _, mf := range mfs {
			if _, dup := seen[mf.GetName()]; dup {
				log.Warn("skipping duplicate metric family", "family", mf.GetName())
				continue
			}
			seen[mf.GetName()] = struct{}{}
			families = append(families, mf)
		}
	}
	slices.SortFunc(families, func(a, b *dto.MetricFamily) int {
		return strings.Compare(a.GetName(), b.GetName())
	})
	return families, nil
}

// NewRuntimeGatherer returns a client_golang registry exposing the Go
// runtime families (go_goroutines, go_memstats_*, ...). Process families
// are left to the system sampler.
func NewRuntimeGatherer() prometheus.Gatherer {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	return r
}
