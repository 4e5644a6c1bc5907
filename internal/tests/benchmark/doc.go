// Package benchmark holds performance benchmarks for vitals: the hot
// instrument paths, exposition, the request pipeline and both item
// stores.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run one group with a longer benchtime:
//
//	go test -bench=BenchmarkItem -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark
