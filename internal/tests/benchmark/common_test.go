package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/vitals/internal/core/domain"
	"github.com/yndnr/vitals/internal/core/service"
	"github.com/yndnr/vitals/internal/storage"
	"github.com/yndnr/vitals/internal/storage/memory"
)

// ItemCounts are the preload sizes for store benchmarks.
var ItemCounts = []int{1000, 5000, 10000}

// backend opens a fresh repository and returns its cleanup.
type backend struct {
	name string
	open func(b *testing.B) service.ItemRepository
}

var backends = []backend{
	{"memory", func(*testing.B) service.ItemRepository { return memory.New() }},
	{"badger", func(b *testing.B) service.ItemRepository {
		cfg := storage.DefaultConfig("")
		cfg.InMemory = true
		cfg.GCInterval = time.Hour
		store, err := storage.Open(cfg, nil)
		if err != nil {
			b.Fatalf("open badger: %v", err)
		}
		b.Cleanup(func() { _ = store.Close() })
		return store
	}},
}

func newItem(b *testing.B, i int) *domain.Item {
	item, err := domain.NewItem(fmt.Sprintf("item-%d", i), "payload")
	if err != nil {
		b.Fatalf("NewItem: %v", err)
	}
	return item
}

// prefill stores count items and returns them.
func prefill(b *testing.B, ctx context.Context, repo service.ItemRepository, count int) []*domain.Item {
	items := make([]*domain.Item, count)
	for i := range items {
		items[i] = newItem(b, i)
		if err := repo.Create(ctx, items[i]); err != nil {
			b.Fatalf("prefill: %v", err)
		}
	}
	return items
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCounts runs benchFn for every backend and preload size.
func runWithCounts(b *testing.B, counts []int, benchFn func(b *testing.B, repo service.ItemRepository, count int)) {
	for _, be := range backends {
		for _, count := range counts {
			b.Run(fmt.Sprintf("%s/items_%d", be.name, count), func(b *testing.B) {
				benchFn(b, be.open(b), count)
			})
		}
	}
}
