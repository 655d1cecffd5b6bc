package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/yndnr/sumconf-go/internal/storage/listing"
	"github.com/yndnr/sumconf-go/internal/telemetry/logger"
)

// MissingDirPolicy decides what a walk does with a directory that does not
// exist, e.g. a start directory that was removed.
type MissingDirPolicy int

const (
	// MissingDirStop ends the walk at the first missing directory.
	MissingDirStop MissingDirPolicy = iota
	// MissingDirSkip keeps walking toward the root.
	MissingDirSkip
)

// String returns the policy name.
func (p MissingDirPolicy) String() string {
	switch p {
	case MissingDirStop:
		return "stop"
	case MissingDirSkip:
		return "skip"
	default:
		return fmt.Sprintf("MissingDirPolicy(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p MissingDirPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration
// files can name the policy.
func (p *MissingDirPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "stop":
		*p = MissingDirStop
	case "skip":
		*p = MissingDirSkip
	default:
		return fmt.Errorf("unknown missing directory policy %q", text)
	}
	return nil
}

// Candidate is a file found by a walk.
type Candidate struct {
	// Path is the absolute file path.
	Path string
	// Rank is the distance of the containing directory from the start
	// directory. The user-scope directory ranks after the last walked one.
	Rank int
}

// Options controls a single walk.
type Options struct {
	StartDir    string
	StopDirs    []string
	StopPeers   []string
	FileNames   []string
	IgnoreUser  bool
	MissingDirs MissingDirPolicy
}

// Result is the outcome of a walk.
type Result struct {
	// Candidates are ordered nearest first, user-scope last.
	Candidates []Candidate
	// Visited lists every directory that was listed, in walk order.
	Visited []string
}

// Paths returns the candidate paths in order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		paths[i] = c.Path
	}
	return paths
}

// Walker walks directory hierarchies through a listing cache.
type Walker struct {
	cache   *listing.Cache
	userDir func() (string, error)
	logger  logger.Logger
}

// Option configures the Walker.
type Option func(*Walker)

// WithCache sets the listing cache. Defaults to listing.Default().
func WithCache(c *listing.Cache) Option {
	return func(w *Walker) {
		w.cache = c
	}
}

// WithUserConfigDir overrides the base per-user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(w *Walker) {
		w.userDir = func() (string, error) { return dir, nil }
	}
}

// WithLogger sets the logger for walk diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(w *Walker) {
		w.logger = l
	}
}

// New creates a new Walker.
func New(opts ...Option) *Walker {
	w := &Walker{
		userDir: sync.OnceValues(UserConfigDir),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.cache == nil {
		w.cache = listing.Default()
	}
	return w
}

// Walk finds the candidate files for appName.
func (w *Walker) Walk(ctx context.Context, appName string, opts Options) (*Result, error) {
	log := w.log(ctx)

	start := opts.StartDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("walker: get working directory: %w", err)
		}
		start = wd
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve %q: %w", start, err)
	}

	stopDirs := make(map[string]bool, len(opts.StopDirs))
	for _, d := range opts.StopDirs {
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			stopDirs[abs] = true
		}
	}

	res := &Result{}
	rank := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug("looking in directory", "dir", dir)
		names, err := w.cache.Get(ctx, dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("walker: list %s: %w", dir, err)
			}
			if opts.MissingDirs != MissingDirSkip || isRoot(dir) || stopDirs[dir] {
				log.Debug("directory missing, stopping", "dir", dir)
				break
			}
			log.Debug("directory missing, skipping", "dir", dir)
			dir = filepath.Dir(dir)
			rank++
			continue
		}

		res.Visited = append(res.Visited, dir)
		present := nameSet(names)
		res.Candidates = appendCandidates(res.Candidates, dir, rank, present, opts.FileNames)

		if isRoot(dir) {
			log.Debug("stopping at filesystem root", "dir", dir)
			break
		}
		if stopDirs[dir] {
			log.Debug("stopping on stop directory", "dir", dir)
			break
		}
		if peer, ok := firstPeer(present, opts.StopPeers); ok {
			log.Debug("stopping on stop peer", "dir", dir, "peer", peer)
			break
		}

		dir = filepath.Dir(dir)
		rank++
	}

	if !opts.IgnoreUser && appName != "" {
		if err := w.addUserDir(ctx, appName, rank+1, opts.FileNames, res); err != nil {
			return nil, err
		}
	}

	if len(res.Candidates) > 0 {
		log.Debug("walk found files", "files", res.Paths())
	}
	return res, nil
}

func (w *Walker) addUserDir(ctx context.Context, appName string, rank int, fileNames []string, res *Result) error {
	base, err := w.userDir()
	if err != nil {
		// No home directory is not fatal; there is simply no user scope.
		w.log(ctx).Debug("no user config directory", "error", err)
		return nil
	}
	dir, err := filepath.Abs(filepath.Join(base, appName))
	if err != nil {
		return nil
	}
	if slices.Contains(res.Visited, dir) {
		// Already walked; its files are candidates at a nearer rank.
		return nil
	}

	names, err := w.cache.Get(ctx, dir)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("walker: list %s: %w", dir, err)
	}

	res.Visited = append(res.Visited, dir)
	res.Candidates = appendCandidates(res.Candidates, dir, rank, nameSet(names), fileNames)
	return nil
}

func (w *Walker) log(ctx context.Context) logger.Logger {
	if w.logger != nil {
		return w.logger
	}
	return logger.L(ctx)
}

// appendCandidates adds dir/name for every configured name present in dir,
// keeping the configured order.
func appendCandidates(dst []Candidate, dir string, rank int, present map[string]struct{}, fileNames []string) []Candidate {
	for _, name := range fileNames {
		if _, ok := present[name]; ok {
			dst = append(dst, Candidate{Path: filepath.Join(dir, name), Rank: rank})
		}
	}
	return dst
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func firstPeer(present map[string]struct{}, peers []string) (string, bool) {
	for _, p := range peers {
		if _, ok := present[p]; ok {
			return p, true
		}
	}
	return "", false
}

func isRoot(dir string) bool {
	return filepath.Dir(dir) == dir
}
