package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/petrarca/repo-analyzer/internal/git"
	"github.com/petrarca/repo-analyzer/internal/progress"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// ErrRootNotEnumerable is returned when the scan root cannot be listed
var ErrRootNotEnumerable = errors.New("scan root cannot be enumerated")

// CollectorOptions configures file enumeration
type CollectorOptions struct {
	Include   []string // Glob patterns a file must match
	Exclude   []string // Glob patterns that drop a file or prune a directory
	Gitignore bool     // Honor .gitignore and .git/info/exclude
	SkipPaths []string // Absolute paths never collected, e.g. the report itself
}

// Collector enumerates the files under a root that belong to the inventory
type Collector struct {
	provider types.Provider
	opts     CollectorOptions
	skip     map[string]bool
	progress *progress.Progress
	logger   *slog.Logger
}

// NewCollector validates the glob patterns and creates a collector
func NewCollector(provider types.Provider, opts CollectorOptions, prog *progress.Progress, logger *slog.Logger) (*Collector, error) {
	for _, pattern := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern: %q", pattern)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, path := range opts.SkipPaths {
		skip[filepath.Clean(path)] = true
	}

	return &Collector{
		provider: provider,
		opts:     opts,
		skip:     skip,
		progress: prog,
		logger:   logger,
	}, nil
}

// Collect returns the deduplicated, sorted absolute paths of all included files.
// Only a failure to enumerate the root itself is returned as an error.
func (c *Collector) Collect(ctx context.Context) ([]string, error) {
	root := c.provider.GetBasePath()

	isDir, err := c.provider.IsDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotEnumerable, root, err)
	}
	if !isDir {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotEnumerable, root)
	}

	entries, err := c.provider.ListDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotEnumerable, root, err)
	}

	loader := git.NewStackBasedLoader(c.provider, c.progress, c.logger)
	loader.InitializeWithTopLevelExcludes(root, c.opts.Exclude, c.opts.Gitignore)

	found := make(map[string]bool)
	if err := c.walk(ctx, root, root, entries, loader, found); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(found))
	for path := range found {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths, nil
}

func (c *Collector) walk(ctx context.Context, root, dir string, entries []types.File, loader *git.StackBasedLoader, found map[string]bool) error {
	if c.opts.Gitignore && loader.LoadAndPushGitignore(dir) {
		defer loader.PopGitignore()
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, entry.Name)
		}

		if loader.ShouldExclude(path) {
			c.progress.Skipped(path, "excluded")
			continue
		}

		if entry.IsDir() {
			children, err := c.provider.ListDir(path)
			if err != nil {
				c.logger.Warn("Skipping unreadable directory", "path", path, "error", err)
				c.progress.Skipped(path, "unreadable")
				continue
			}
			if err := c.walk(ctx, root, path, children, loader, found); err != nil {
				return err
			}
			continue
		}

		if c.skip[filepath.Clean(path)] {
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if c.included(filepath.ToSlash(rel), entry.Name) {
			found[path] = true
		}
	}

	return nil
}

// included matches the root-relative path; patterns without a slash also
// match the bare file name
func (c *Collector) included(rel, name string) bool {
	for _, pattern := range c.opts.Include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, name); matched {
				return true
			}
		}
	}
	return false
}
