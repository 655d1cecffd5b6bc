package benchmark

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Depths defines the directory depths walked by the gather benchmarks.
var Depths = []int{1, 4, 16, 64}

// KeyCounts defines the record sizes used by the merge benchmarks.
var KeyCounts = []int{10, 100, 1000}

// tree creates a chain of depth nested directories under a temporary root
// and drops a .benchrc into every other one. It returns the root and the
// deepest directory.
func tree(b *testing.B, depth int) (root, leaf string) {
	b.Helper()
	root = b.TempDir()
	leaf = root
	for i := 0; i < depth; i++ {
		leaf = filepath.Join(leaf, fmt.Sprintf("d%d", i))
		if err := os.Mkdir(leaf, 0o755); err != nil {
			b.Fatalf("Mkdir() error = %v", err)
		}
		if i%2 == 0 {
			content := fmt.Sprintf("level: %d\nk%d: v\n", i, i)
			if err := os.WriteFile(filepath.Join(leaf, ".benchrc"), []byte(content), 0o644); err != nil {
				b.Fatalf("WriteFile() error = %v", err)
			}
		}
	}
	return root, leaf
}

// record builds a two-level map with n leaf keys.
func record(n int, value any) map[string]any {
	m := make(map[string]any, n/10+1)
	for i := 0; i < n; i++ {
		group := fmt.Sprintf("g%d", i%10)
		sub, ok := m[group].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			m[group] = sub
		}
		sub[fmt.Sprintf("k%d", i)] = value
	}
	return m
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithDepths runs a benchmark function for every depth.
func runWithDepths(b *testing.B, depths []int, benchFn func(b *testing.B, depth int)) {
	for _, depth := range depths {
		b.Run(fmt.Sprintf("depth_%d", depth), func(b *testing.B) {
			benchFn(b, depth)
		})
	}
}
