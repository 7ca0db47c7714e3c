// Package security applies line-level regex rules to source files.
package security

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// Scanner tests every line of every source file against an ordered rule list
type Scanner struct {
	provider   types.Provider
	rules      []*Rule
	extensions map[string]bool
	logger     *slog.Logger
}

// NewScanner creates a scanner over compiled rules
func NewScanner(provider types.Provider, rules []*Rule, extensions []string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Scanner{provider: provider, rules: rules, extensions: exts, logger: logger}
}

// Rules returns the rules in application order
func (s *Scanner) Rules() []*Rule {
	return s.rules
}

// Scan returns one finding per (file, line, rule) match ordered by file,
// then line, then rule order. Unreadable files are skipped.
func (s *Scanner) Scan(ctx context.Context, files []types.FileRecord) ([]types.SecurityFinding, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		if s.extensions[strings.ToLower(filepath.Ext(file.Path))] {
			paths = append(paths, file.Path)
		}
	}
	sort.Strings(paths)

	findings := []types.SecurityFinding{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := s.provider.ReadFile(path)
		if err != nil {
			s.logger.Debug("Skipping unreadable file", "path", path, "error", err)
			continue
		}

		findings = append(findings, s.ScanContent(path, string(content))...)
	}

	return findings, nil
}

// ScanContent applies the rules to already loaded text
func (s *Scanner) ScanContent(path, content string) []types.SecurityFinding {
	var findings []types.SecurityFinding

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		for _, rule := range s.rules {
			if !rule.Match(line) {
				continue
			}
			findings = append(findings, types.SecurityFinding{
				File:     path,
				Line:     i + 1,
				Severity: rule.Severity,
				Issue:    rule.Issue,
				Fix:      rule.Fix,
				Rule:     rule.ID,
			})
		}
	}

	return findings
}
