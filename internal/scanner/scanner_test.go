package scanner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/inventory"
	"github.com/petrarca/repo-analyzer/internal/provider"
	"github.com/petrarca/repo-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func evalOnLine42() string {
	lines := make([]string, 45)
	for i := range lines {
		lines[i] = "console.log(i)"
	}
	lines[41] = "const out = eval(userInput)"
	return strings.Join(lines, "\n")
}

func newFakeRepo() *provider.FakeProvider {
	p := provider.NewFakeProvider("/repo")
	p.AddFile("package.json", `{"dependencies":{"left-pad":"1.0.0","react":"^18.2.0"},"devDependencies":{"vitest":"1.0.0"}}`)
	p.AddFile("src/index.ts", "import React from 'react'\nimport { a } from './a'\nimport { x } from './x'\nimport { run } from './x.js'\n")
	p.AddFile("src/a.ts", "import { b } from './b'\nexport const a = b\n")
	p.AddFile("src/b.ts", "export const b = 1\n")
	p.AddFile("src/orphan.ts", "export const lonely = true\n")
	p.AddFile("src/x.ts", "export const x = 42\n")
	p.AddFile("src/y.ts", "export const x = 42\n")
	p.AddFile("src/x.js", evalOnLine42())
	p.AddFile("src/x.test.ts", "import { describe } from 'vitest'\n")
	p.AddFile("node_modules/left-pad/index.js", "module.exports = function leftPad() {}")
	return p
}

func newTestScanner(t *testing.T, p types.Provider, opts Options) *Scanner {
	t.Helper()
	s, err := New(p, opts, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedTime }
	return s
}

func TestScan(t *testing.T) {
	defer goleak.VerifyNone(t)

	result, err := newTestScanner(t, newFakeRepo(), Options{}).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9, result.TotalFiles)
	assert.Greater(t, result.TotalSizeBytes, int64(0))
	assert.Equal(t, fixedTime, result.GeneratedAt)

	assert.Equal(t, []string{"/repo/src/orphan.ts", "/repo/src/x.test.ts", "/repo/src/y.ts"}, result.UnusedFiles)
	assert.Equal(t, []types.DuplicateGroup{{Files: []string{"/repo/src/x.ts", "/repo/src/y.ts"}, Similarity: 1.0}}, result.DuplicateGroups)
	assert.Equal(t, []types.DependencyRecord{{Name: "left-pad", Ecosystem: "npm", Used: false}}, result.UnusedDependencies)

	require.Len(t, result.SecurityFindings, 1)
	finding := result.SecurityFindings[0]
	assert.Equal(t, "/repo/src/x.js", finding.File)
	assert.Equal(t, 42, finding.Line)
	assert.Equal(t, types.SeverityCritical, finding.Severity)
	assert.Equal(t, "Use of eval() detected", finding.Issue)

	assert.Equal(t, []string{
		"Remove 3 unused files to reduce codebase size",
		"Consolidate 1 duplicate file groups into shared modules",
		"Remove 1 unused dependencies from the manifest",
		"URGENT: Fix 1 critical security issues immediately",
		"Address 1 security issues",
		"Increase test coverage from 65% to 80%",
	}, result.Recommendations)
}

func TestScan_ReferencedFileIsNotUnused(t *testing.T) {
	p := provider.NewFakeProvider("/repo")
	p.AddFile("a.ts", "import { b } from './b'\n")
	p.AddFile("b.ts", "export const b = 1\n")

	result, err := newTestScanner(t, p, Options{}).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/a.ts"}, result.UnusedFiles)
}

func TestScan_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := newFakeRepo()
	parallel, err := newTestScanner(t, p, Options{}).Scan(context.Background())
	require.NoError(t, err)

	sequential := newTestScanner(t, p, Options{Sequential: true})
	sequential.now = time.Now
	seqResult, err := sequential.Scan(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(parallel, seqResult, cmpopts.IgnoreFields(types.ScanResult{}, "GeneratedAt")); diff != "" {
		t.Errorf("parallel and sequential results differ (-parallel +sequential):\n%s", diff)
	}
}

func TestScan_MissingManifest(t *testing.T) {
	p := provider.NewFakeProvider("/repo")
	p.AddFile("src/index.ts", "import x from 'x'\n")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := New(p, Options{}, logger)
	require.NoError(t, err)

	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result.UnusedDependencies)
	assert.Empty(t, result.UnusedDependencies)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "No dependency manifest found")
}

func TestScan_EmptyTree(t *testing.T) {
	result, err := newTestScanner(t, provider.NewFakeProvider("/empty"), Options{}).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalFiles)
	assert.Empty(t, result.UnusedFiles)
	assert.Empty(t, result.DuplicateGroups)
	assert.Empty(t, result.SecurityFindings)
	assert.Equal(t, []string{"Increase test coverage from 65% to 80%"}, result.Recommendations)
}

func TestScan_RootNotEnumerable(t *testing.T) {
	p := provider.NewFSProvider(filepath.Join(t.TempDir(), "missing"))
	s, err := New(p, Options{}, nil)
	require.NoError(t, err)

	result, err := s.Scan(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, inventory.ErrRootNotEnumerable)
}

type failingQuality struct{}

func (failingQuality) Name() string { return "failing" }

func (failingQuality) Metrics(context.Context, []types.FileRecord) (types.QualityMetrics, error) {
	return types.QualityMetrics{}, errors.New("tool crashed")
}

func TestScan_StageFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, sequential := range []bool{false, true} {
		s := newTestScanner(t, newFakeRepo(), Options{Sequential: sequential})
		s.quality = failingQuality{}

		result, err := s.Scan(context.Background())
		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quality stage failed: tool crashed")
	}
}

func TestScan_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(t, newFakeRepo(), Options{}).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Options(t *testing.T) {
	project, err := config.ParseConfig([]byte(`
exclude: ["src/legacy/**"]
report:
  path: reports/analysis.md
quality:
  provider: scc
security:
  rules:
    - id: todo-secret
      pattern: "TODO: secret"
      severity: low
      issue: Secret reminder left in code
`))
	require.NoError(t, err)

	s := newTestScanner(t, provider.NewFakeProvider("/repo"), Options{Project: project, Sequential: true})
	assert.Equal(t, "/repo/reports/analysis.md", s.ReportPath())
	assert.Equal(t, "scc", s.QualityProviderName())
	assert.False(t, s.Parallel())
	assert.Contains(t, s.exclude, "src/legacy/**")
	assert.Contains(t, s.exclude, "**/node_modules/**")
	assert.Equal(t, "todo-secret", s.Rules()[len(s.Rules())-1].ID)

	cli := newTestScanner(t, provider.NewFakeProvider("/repo"), Options{Project: project, ReportPath: "out.md", QualityProvider: "baseline"})
	assert.Equal(t, "/repo/out.md", cli.ReportPath())
	assert.Equal(t, "baseline", cli.QualityProviderName())
	assert.True(t, cli.Parallel())
}

func TestNew_InvalidOptions(t *testing.T) {
	badRule, err := config.ParseConfig([]byte(`
security:
  rules:
    - id: broken
      pattern: "("
      severity: low
      issue: broken
`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		opts    Options
		message string
	}{
		{"bad glob", Options{IncludePatterns: []string{"src/[oops"}}, "invalid glob pattern"},
		{"unknown quality provider", Options{QualityProvider: "sonar"}, "unknown quality provider"},
		{"bad custom rule", Options{Project: badRule}, "failed to load security rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(provider.NewFakeProvider("/repo"), tt.opts, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestRun_WritesReportAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":  `{"dependencies":{"left-pad":"1.0.0"}}`,
		"src/index.ts":  "import { a } from './a'\n",
		"src/a.ts":      "export const a = eval('1')\n",
		"src/unused.ts": "export {}\n",
	})

	settings := config.DefaultSettings()
	s, err := NewWithSettings(root, settings, nil, nil)
	require.NoError(t, err)

	first, meta, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, root, meta.ScanPath)
	assert.Equal(t, "baseline", meta.QualityProvider)

	reportPath := filepath.Join(root, config.DefaultReportFile)
	content, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Code Analysis Report")
	assert.Contains(t, string(content), "- **CRITICAL** src/a.ts:1 - Use of eval() detected")
	assert.Contains(t, string(content), "- src/unused.ts")
	assert.Contains(t, string(content), "- left-pad (npm)")

	again, err := NewWithSettings(root, settings, nil, nil)
	require.NoError(t, err)
	second, _, err := again.Run(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(types.ScanResult{}, "GeneratedAt")); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, 4, second.TotalFiles)
}

func TestRun_ReportWriteFailure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/index.ts": "export {}\n", "blocker": "x"})

	settings := config.DefaultSettings()
	settings.ReportFile = filepath.Join("blocker", "report.md")
	s, err := NewWithSettings(root, settings, nil, nil)
	require.NoError(t, err)

	_, _, err = s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create report directory")
}
