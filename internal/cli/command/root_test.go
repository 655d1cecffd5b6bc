package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sumconf-go/internal/core/domain"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "sumconf" {
		t.Errorf("Name = %q, want sumconf", app.Name)
	}
	if app.Action == nil {
		t.Error("a bare package name should run get through the root action")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"get", "defaults", "watch"} {
		if !commandNames[name] {
			t.Errorf("missing required command: %s", name)
		}
	}

	flagNames := make(map[string]bool)
	for _, flag := range app.Flags {
		flagNames[flag.Names()[0]] = true
	}
	for _, name := range []string{"verbose", "output", "config", "metrics-file", "version", "source"} {
		if !flagNames[name] {
			t.Errorf("missing required flag: %s", name)
		}
	}
}

func TestApp_FlagNamesUnique(t *testing.T) {
	app := App()
	check := func(owner string, flags []cli.Flag) {
		seen := make(map[string]bool)
		for _, f := range flags {
			for _, name := range f.Names() {
				if seen[name] {
					t.Errorf("%s: flag name %q defined twice", owner, name)
				}
				seen[name] = true
			}
		}
	}
	check("app", app.Flags)
	for _, cmd := range app.Commands {
		check(cmd.Name, cmd.Flags)
	}
}

func TestCommands_Run(t *testing.T) {
	for _, args := range [][]string{
		{"get", "--ignore-user", "foo"},
		{"--ignore-user", "foo"},
		{"defaults", "foo"},
		{"-v", "defaults", "foo"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			isolate(t)
			if res := runCLI(t, args...); res.err != nil {
				t.Errorf("error = %v, stderr = %s", res.err, res.stderr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	isolate(t)

	res := runCLI(t, "--version")
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "sumconf version ") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestGet(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"get"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("get error = %v, stderr = %s", res.err, res.stderr)
	}
	if res.stdout != "x: 2\n\"y\": 3\n" {
		t.Errorf("stdout = %q, want x: 2, y: 3", res.stdout)
	}
}

func TestGet_DefaultCommand(t *testing.T) {
	home := isolate(t)
	start := filepath.Join(home, "project")
	if err := os.Mkdir(start, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(start, ".foorc"), "a: 1\n")
	t.Chdir(start)

	res := runCLI(t, "foo")
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if res.stdout != "a: 1\n" {
		t.Errorf("stdout = %q, want a: 1", res.stdout)
	}
}

func TestGet_DefaultCommandFlags(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"-s"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v, stderr = %s", res.err, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, `from "`) {
		t.Errorf("stdout = %q, want grouped output", res.stdout)
	}
}

func TestGet_FlagsAfterPackageName(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"get", append([]string{"get", "foo"}, dirs...), "x: 2\n\"y\": 3\n"},
		{"default command", append([]string{"foo"}, dirs...), "x: 2\n\"y\": 3\n"},
		{"bool and alias", append(append([]string{"get", "foo"}, dirs...), "-R", "--files=.foorc"), "x: 1\n\"y\": 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.err != nil {
				t.Fatalf("error = %v, stderr = %s", res.err, res.stderr)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}

	for _, args := range [][]string{
		{"get", "foo", "--no-such-flag"},
		{"get", "foo", "--start-dir"},
		{"get", "foo", "bar"},
	} {
		if res := runCLI(t, args...); ExitCode(res.err) != ExitUsage {
			t.Errorf("%v: ExitCode() = %d, want %d (err = %v)", args, ExitCode(res.err), ExitUsage, res.err)
		}
	}
}

func TestGet_Source(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"get", "-s"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("get -s error = %v", res.err)
	}

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("stdout = %q, want two groups of one key", res.stdout)
	}
	if !strings.HasPrefix(lines[0], `from "`) || !strings.HasSuffix(lines[0], `.foorc.json":`) {
		t.Errorf("first group header = %q", lines[0])
	}
	if lines[1] != "  x: 2" || lines[3] != "  y: 3" {
		t.Errorf("group values = %q, %q", lines[1], lines[3])
	}
}

func TestGet_SourceTable(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"-o", "table", "get", "-s"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "KEY") || !strings.Contains(res.stdout, ".foorc.json") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestGet_ResetFileNames(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"get", "-R"}, dirs...), "foo")...)
	if !errors.Is(res.err, domain.ErrFilesRequired) {
		t.Fatalf("get -R error = %v, want ErrFilesRequired", res.err)
	}
	if code := ExitCode(res.err); code != ExitUsage {
		t.Errorf("ExitCode() = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(res.err.Error(), "SC-CLI-4000") {
		t.Errorf("error = %q, want code SC-CLI-4000", res.err)
	}

	res = runCLI(t, append(append([]string{"get", "-R", "-f", ".foorc"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("get -R -f error = %v", res.err)
	}
	if res.stdout != "x: 1\n\"y\": 3\n" {
		t.Errorf("stdout = %q, want only a/.foorc", res.stdout)
	}
}

func TestGet_AddFiles(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"get", "-f", ".bobrc"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("get -f error = %v", res.err)
	}
	if res.stdout != "bob: true\nx: 2\n\"y\": 3\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestGet_JSON(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"-o", "json", "get"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if !strings.Contains(res.stdout, `"x": 2`) {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestGet_Errors(t *testing.T) {
	isolate(t)

	res := runCLI(t, "get")
	if code := ExitCode(res.err); code != ExitUsage {
		t.Errorf("missing argument: ExitCode() = %d, want %d (err = %v)", code, ExitUsage, res.err)
	}

	res = runCLI(t, "get", "foo/bar")
	if !errors.Is(res.err, domain.ErrInvalidAppName) {
		t.Errorf("error = %v, want ErrInvalidAppName", res.err)
	}
	if code := ExitCode(res.err); code != ExitError {
		t.Errorf("ExitCode() = %d, want %d", code, ExitError)
	}

	if res = runCLI(t, "-o", "xml", "get", "foo"); res.err == nil {
		t.Error("unknown output format should fail")
	}
}

func TestGet_ConfigFile(t *testing.T) {
	home := isolate(t)
	dirs := fixture(t)
	cfg := writeFile(t, filepath.Join(home, "cli.yaml"), "output: json\n")

	res := runCLI(t, append(append([]string{"--config", cfg, "get"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "{") {
		t.Errorf("stdout = %q, want JSON", res.stdout)
	}
}

func TestGet_SelfConfiguration(t *testing.T) {
	home := isolate(t)
	dirs := fixture(t)
	writeFile(t, filepath.Join(home, ".sumconfrc"), "output: table\n")

	res := runCLI(t, append(append([]string{"get"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "KEY") {
		t.Errorf("stdout = %q, want a table", res.stdout)
	}
}

func TestVerbose(t *testing.T) {
	isolate(t)
	dirs := fixture(t)

	res := runCLI(t, append(append([]string{"-v", "get"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}
	if !strings.Contains(res.stderr, "level=DEBUG") {
		t.Errorf("stderr should contain debug logs, got %q", res.stderr)
	}
	if res.stdout != "x: 2\n\"y\": 3\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestMetricsFile(t *testing.T) {
	home := isolate(t)
	dirs := fixture(t)
	path := filepath.Join(home, "sumconf.prom")

	res := runCLI(t, append(append([]string{"--metrics-file", path, "get"}, dirs...), "foo")...)
	if res.err != nil {
		t.Fatalf("error = %v", res.err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{`sumconf_gather_total{outcome="ok"}`, "sumconf_listing_cache_entries"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics file missing %q", want)
		}
	}
}

func TestDefaults(t *testing.T) {
	isolate(t)

	res := runCLI(t, "defaults", "foo")
	if res.err != nil {
		t.Fatalf("defaults error = %v", res.err)
	}
	for _, want := range []string{"- .foorc", "stop_key: root", "missing_dirs: stop", "- .git"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	if res.stderr != "" {
		t.Errorf("stderr = %q, want empty", res.stderr)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitError},
		{domain.ErrFilesRequired, ExitUsage},
		{fmt.Errorf("wrapped: %w", domain.ErrFilesRequired), ExitUsage},
		{cli.Exit("usage", 2), 2},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
