package git

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/petrarca/repo-analyzer/internal/progress"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// ParsePatterns parses the content of a .gitignore style file
func ParsePatterns(data []byte) ([]string, error) {
	patterns := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Remove trailing slashes for consistency (dir/ -> dir)
		pattern := strings.TrimSuffix(line, "/")

		// Negations are not supported by a plain glob matcher
		if strings.HasPrefix(pattern, "!") || pattern == "" {
			continue
		}

		patterns = append(patterns, pattern)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ignore patterns: %w", err)
	}

	return patterns, nil
}

// PatternSet represents patterns from a single ignore source
type PatternSet struct {
	Directory string   // Directory the patterns are relative to
	Patterns  []string // Patterns from this source
}

// IgnoreStack represents a stack of ignore pattern sets
type IgnoreStack struct {
	stack []*PatternSet
}

// NewIgnoreStack creates a new empty ignore stack
func NewIgnoreStack() *IgnoreStack {
	return &IgnoreStack{
		stack: make([]*PatternSet, 0),
	}
}

// Push adds a pattern set to the stack
func (s *IgnoreStack) Push(directory string, patterns []string) {
	if len(patterns) == 0 {
		return
	}
	s.stack = append(s.stack, &PatternSet{Directory: directory, Patterns: patterns})
}

// Pop removes the top pattern set from the stack
func (s *IgnoreStack) Pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Depth returns the current depth of the stack
func (s *IgnoreStack) Depth() int {
	return len(s.stack)
}

// AllPatterns returns all patterns from the entire stack (in order)
func (s *IgnoreStack) AllPatterns() []string {
	var all []string
	for _, set := range s.stack {
		all = append(all, set.Patterns...)
	}
	return all
}

// ShouldExclude checks a path against every pattern set on the stack.
// Each pattern is matched against the path relative to the directory that
// declared it, and unanchored patterns also against the bare name.
func (s *IgnoreStack) ShouldExclude(fullPath string) bool {
	name := filepath.Base(fullPath)

	for _, set := range s.stack {
		rel, err := filepath.Rel(set.Directory, fullPath)
		rel = filepath.ToSlash(rel)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}

		for _, pattern := range set.Patterns {
			if anchored := strings.TrimPrefix(pattern, "/"); anchored != pattern {
				if matched, _ := doublestar.Match(anchored, rel); matched {
					return true
				}
				continue
			}

			if matched, _ := doublestar.Match(pattern, rel); matched {
				return true
			}
			if matched, _ := doublestar.Match(pattern, name); matched {
				return true
			}
		}
	}

	return false
}

// StackBasedLoader maintains ignore patterns while a directory tree is walked
type StackBasedLoader struct {
	provider types.Provider
	progress *progress.Progress
	logger   *slog.Logger
	stack    *IgnoreStack
	basePath string
}

// NewStackBasedLoader creates a loader that reads ignore files through the provider
func NewStackBasedLoader(provider types.Provider, prog *progress.Progress, logger *slog.Logger) *StackBasedLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &StackBasedLoader{
		provider: provider,
		progress: prog,
		logger:   logger,
		stack:    NewIgnoreStack(),
	}
}

// InitializeWithTopLevelExcludes pushes the configured excludes as a
// root-level pseudo .gitignore. When withGitInfo is set, patterns from
// .git/info/exclude are pushed on top.
func (l *StackBasedLoader) InitializeWithTopLevelExcludes(basePath string, excludes []string, withGitInfo bool) {
	l.basePath = basePath

	if len(excludes) > 0 {
		l.stack.Push(basePath, excludes)
		l.logger.Debug("Added top-level excludes",
			"base_path", basePath,
			"exclude_count", len(excludes))
	}

	if !withGitInfo {
		return
	}

	excludePath := filepath.Join(basePath, ".git", "info", "exclude")
	if patterns, ok := l.loadPatterns(excludePath); ok && len(patterns) > 0 {
		l.stack.Push(basePath, patterns)
		l.logger.Debug("Loaded .git/info/exclude patterns", "path", excludePath, "count", len(patterns))
	}
}

// LoadAndPushGitignore loads .gitignore for directory and pushes it to the stack.
// Returns true if a pattern set was pushed and must later be popped.
func (l *StackBasedLoader) LoadAndPushGitignore(directory string) bool {
	patterns, ok := l.loadPatterns(filepath.Join(directory, ".gitignore"))
	if !ok || len(patterns) == 0 {
		return false
	}

	l.stack.Push(directory, patterns)
	if l.progress != nil {
		l.progress.Info(fmt.Sprintf("Loaded %d ignore patterns from %s", len(patterns), filepath.Join(directory, ".gitignore")))
	}
	return true
}

// PopGitignore removes patterns from the stack when leaving a directory
func (l *StackBasedLoader) PopGitignore() {
	l.stack.Pop()
}

// ShouldExclude checks if a path is excluded by the current stack
func (l *StackBasedLoader) ShouldExclude(fullPath string) bool {
	return l.stack.ShouldExclude(fullPath)
}

// Stack returns the current ignore stack
func (l *StackBasedLoader) Stack() *IgnoreStack {
	return l.stack
}

func (l *StackBasedLoader) loadPatterns(path string) ([]string, bool) {
	exists, err := l.provider.Exists(path)
	if err != nil || !exists {
		return nil, false
	}

	data, err := l.provider.ReadFile(path)
	if err != nil {
		l.logger.Warn("Failed to read ignore file", "path", path, "error", err)
		return nil, false
	}

	patterns, err := ParsePatterns(data)
	if err != nil {
		l.logger.Warn("Failed to parse ignore file", "path", path, "error", err)
		return nil, false
	}

	l.logger.Debug("Loaded patterns from file", "path", path, "count", len(patterns))
	return patterns, true
}
