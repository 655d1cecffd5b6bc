// Package benchmark provides performance benchmarks for sumconf.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare a cold walk against a warm listing cache:
//
//	go test -bench='BenchmarkGather/(cold|warm)' -benchmem ./internal/tests/benchmark/...
//
// Generate performance report:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee benchmark.txt
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
