package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/vitals/internal/core/domain"
	"github.com/yndnr/vitals/internal/telemetry/logger"
	"github.com/yndnr/vitals/internal/telemetry/metric"
)

// itemPrefix namespaces item keys.
var itemPrefix = []byte("item/")

// maxTxnRetries bounds retries of a transaction that lost a write conflict.
const maxTxnRetries = 5

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: badger store closed")

// Config configures a BadgerStore.
type Config struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in memory; used by tests.
	InMemory bool

	SyncWrites bool

	// GCInterval is the period of value log garbage collection.
	// Default: 10m
	GCInterval time.Duration

	// GCDiscardRatio is passed to RunValueLogGC.
	// Default: 0.5
	GCDiscardRatio float64
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// BadgerStore persists items in Badger as JSON values under item/{id}.
type BadgerStore struct {
	db  *badger.DB
	cfg Config
	log logger.Logger

	lsmSize  *metric.Gauge
	vlogSize *metric.Gauge
	gcRuns   *metric.CounterVec

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Option configures a BadgerStore.
type Option func(*BadgerStore)

// WithLogger sets the logger used by the store and by Badger itself.
func WithLogger(log logger.Logger) Option {
	return func(s *BadgerStore) { s.log = log }
}

// Open opens (or creates) the store and starts the GC loop. If reg is
// non-nil the store exports its size and GC outcomes on it.
func Open(cfg Config, reg *metric.Registry, opts ...Option) (*BadgerStore, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("storage: dir is required")
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCDiscardRatio <= 0 || cfg.GCDiscardRatio >= 1 {
		cfg.GCDiscardRatio = 0.5
	}

	s := &BadgerStore{
		cfg:    cfg,
		log:    logger.Discard(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if reg != nil {
		if err := s.registerMetrics(reg); err != nil {
			return nil, err
		}
	}

	bopts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(&badgerLogger{log: s.log.With("component", "badger")})
	if cfg.InMemory {
		bopts = bopts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	s.db = db
	s.updateSizes()

	go s.gcLoop()

	s.log.Info("badger store opened", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return s, nil
}

func (s *BadgerStore) registerMetrics(reg *metric.Registry) error {
	size, err := reg.Gauge("vitals_storage_size_bytes", "Size of the item store on disk in bytes", "part")
	if err != nil {
		return err
	}
	gc, err := reg.Counter("vitals_storage_gc_runs_total", "Value log garbage collection runs", "result")
	if err != nil {
		return err
	}
	s.lsmSize = size.WithLabelValues("lsm")
	s.vlogSize = size.WithLabelValues("value_log")
	s.gcRuns = gc
	return nil
}

func itemKey(id string) []byte {
	key := make([]byte, 0, len(itemPrefix)+len(id))
	key = append(key, itemPrefix...)
	return append(key, id...)
}

func decodeItem(it *badger.Item) (*domain.Item, error) {
	var item domain.Item
	err := it.Value(func(val []byte) error {
		return json.Unmarshal(val, &item)
	})
	if err != nil {
		return nil, domain.ErrInternalServer.WithCause(fmt.Errorf("decode %s: %w", it.Key(), err))
	}
	return &item, nil
}

func putItem(txn *badger.Txn, item *domain.Item) error {
	val, err := json.Marshal(item)
	if err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}
	return txn.Set(itemKey(item.ID), val)
}

// wrap maps Badger errors onto domain errors. Domain errors pass through.
func wrap(err error) error {
	if _, ok := domain.AsDomainError(err); ok {
		return err
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrDBClosed):
		return domain.ErrInternalServer.WithCause(ErrClosed)
	default:
		return domain.ErrInternalServer.WithCause(err)
	}
}

// update runs fn in a read-write transaction. A transaction that loses
// a write conflict is retried.
func (s *BadgerStore) update(ctx context.Context, fn func(*badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) && attempt < maxTxnRetries {
			s.log.Debug("retrying conflicted transaction", "attempt", attempt+1)
			continue
		}
		return wrap(err)
	}
}

// Create stores a new item.
func (s *BadgerStore) Create(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(itemKey(item.ID))
		switch {
		case err == nil:
			return domain.ErrItemConflict
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return putItem(txn, item)
	})
}

// Get retrieves an item by ID.
func (s *BadgerStore) Get(ctx context.Context, id string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var item *domain.Item
	err := s.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get(itemKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		item, err = decodeItem(it)
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return item, nil
}

// Update applies fn to the decoded item and writes it back in the same
// transaction. Nothing is written when fn fails.
func (s *BadgerStore) Update(ctx context.Context, id string, fn func(*domain.Item) error) (*domain.Item, error) {
	var updated *domain.Item
	err := s.update(ctx, func(txn *badger.Txn) error {
		it, err := txn.Get(itemKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		item, err := decodeItem(it)
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
		updated = item
		return putItem(txn, item)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an item.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		key := itemKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrItemNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// List returns all items in key order.
func (s *BadgerStore) List(ctx context.Context) ([]*domain.Item, error) {
	items := []*domain.Item{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = itemPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, wrap(err)
	}
	return items, nil
}

// Count returns the number of stored items. It walks keys only.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = itemPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, wrap(err)
	}
	return n, ctx.Err()
}

// GC runs value log garbage collection until Badger reports nothing left
// to rewrite. It returns the number of rewritten log files.
func (s *BadgerStore) GC() (int, error) {
	if s.cfg.InMemory {
		return 0, nil
	}

	rewrites := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			s.countGC("error")
			return rewrites, fmt.Errorf("storage: value log gc: %w", err)
		}
		rewrites++
	}

	if rewrites > 0 {
		s.countGC("rewrite")
	} else {
		s.countGC("noop")
	}
	s.updateSizes()
	return rewrites, nil
}

func (s *BadgerStore) countGC(result string) {
	if s.gcRuns != nil {
		s.gcRuns.WithLabelValues(result).Inc()
	}
}

func (s *BadgerStore) updateSizes() {
	if s.lsmSize == nil {
		return
	}
	lsm, vlog := s.db.Size()
	s.lsmSize.Set(float64(lsm))
	s.vlogSize.Set(float64(vlog))
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			n, err := s.GC()
			if err != nil {
				s.log.Error("value log gc failed", "error", err)
				continue
			}
			s.log.Debug("value log gc completed", "rewrites", n, "elapsed", time.Since(start))
		case <-s.stopCh:
			return
		}
	}
}

// Close stops the GC loop and closes the database. It is safe to call
// more than once.
func (s *BadgerStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		if cerr := s.db.Close(); cerr != nil {
			err = fmt.Errorf("storage: close badger: %w", cerr)
			return
		}
		s.log.Info("badger store closed")
	})
	return err
}

// badgerLogger adapts logger.Logger to badger.Logger.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
