package command

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yndnr/sumconf-go/internal/cli/config"
	"github.com/yndnr/sumconf-go/internal/core/service"
	"github.com/yndnr/sumconf-go/internal/storage/listing"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
	"github.com/yndnr/sumconf-go/internal/telemetry/metric"
)

// cliResult is what one CLI invocation produced.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the app with args and captures its output.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := NewApp(&stdout, &stderr).Run(append([]string{"sumconf"}, args...))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// isolate runs the test from an empty home directory so that the CLI's
// own configuration gather finds nothing.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(logger.DebugEnv, "")
	t.Chdir(home)
	t.Cleanup(func() { logger.SetLevel("info") })
	return home
}

// fixture builds root/a/b/c:
//
//	a/.foorc        x: 1, y: 3
//	a/b/.foorc.json x: 2
//	a/b/.bobrc      bob: true
//
// and returns the flags that confine a walk to it.
func fixture(t *testing.T) []string {
	t.Helper()
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(a, "b")
	c := filepath.Join(b, "c")
	if err := os.MkdirAll(c, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeFile(t, filepath.Join(a, ".foorc"), "x: 1\ny: 3\n")
	writeFile(t, filepath.Join(b, ".foorc.json"), `{"x": 2}`)
	writeFile(t, filepath.Join(b, ".bobrc"), "bob: true\n")
	return []string{"--start-dir", c, "--stop-dirs", root, "--ignore-user"}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
	return path
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testState builds a run state without going through setup.
func testState(out *syncBuffer) *state {
	cfg := config.Default()
	cfg.WatchInterval = 0
	metrics := metric.NewRegistry()
	return &state{
		cfg:      cfg,
		gatherer: service.NewGatherer(service.WithCache(listing.New()), service.WithMetrics(metrics)),
		metrics:  metrics,
		log:      logger.Discard(),
		stdout:   out,
		stderr:   out,
	}
}
