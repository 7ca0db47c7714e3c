// Package report renders a scan result as a Markdown document.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/petrarca/repo-analyzer/internal/metadata"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// MaxUnusedFiles is the number of unused files listed before truncation
const MaxUnusedFiles = 20

// Render writes the report for result to w. Paths are shown relative to
// meta.ScanPath. Rendering has no side effects beyond w.
func Render(w io.Writer, result *types.ScanResult, meta *metadata.ScanMetadata) error {
	r := &renderer{root: ""}
	if meta != nil {
		r.root = meta.ScanPath
	}

	r.header(result)
	r.overview(result, meta)
	r.quality(result.QualityMetrics)
	r.security(result.SecurityFindings)
	r.recommendations(result.Recommendations)
	r.unusedFiles(result.UnusedFiles)
	r.duplicates(result.DuplicateGroups)
	r.dependencies(result.UnusedDependencies)

	_, err := w.Write(r.buf.Bytes())
	return err
}

// Write renders the report and replaces the file at path in a single write,
// creating missing parent directories
func Write(path string, result *types.ScanResult, meta *metadata.ScanMetadata) error {
	var buf bytes.Buffer
	if err := Render(&buf, result, meta); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

type renderer struct {
	buf  bytes.Buffer
	root string
}

func (r *renderer) line(format string, args ...any) {
	fmt.Fprintf(&r.buf, format, args...)
	r.buf.WriteByte('\n')
}

func (r *renderer) section(title string) {
	r.line("## %s", title)
	r.line("")
}

func (r *renderer) empty(text string) {
	r.line("_%s_", text)
	r.line("")
}

func (r *renderer) rel(path string) string {
	if r.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (r *renderer) header(result *types.ScanResult) {
	r.line("# Code Analysis Report")
	r.line("")
	r.line("Generated: %s", result.GeneratedAt.UTC().Format(time.RFC3339))
	r.line("")
}

func (r *renderer) overview(result *types.ScanResult, meta *metadata.ScanMetadata) {
	r.section("Overview")

	if meta != nil {
		if name := meta.Repository.DisplayName(); name != "" {
			r.line("- **Repository**: %s", name)
		}
		if len(meta.Licenses) > 0 {
			r.line("- **License**: %s", strings.Join(meta.Licenses, ", "))
		}
	}

	r.line("- **Total Files**: %s", humanize.Comma(int64(result.TotalFiles)))
	r.line("- **Total Size**: %s (%s bytes)", humanize.Bytes(uint64(result.TotalSizeBytes)), humanize.Comma(result.TotalSizeBytes))
	r.line("- **Unused Files**: %d", len(result.UnusedFiles))
	r.line("- **Duplicate Groups**: %d", len(result.DuplicateGroups))
	r.line("- **Unused Dependencies**: %d", len(result.UnusedDependencies))
	r.line("- **Security Issues**: %d (%d critical, %d high, %d medium, %d low)",
		len(result.SecurityFindings),
		result.CountBySeverity(types.SeverityCritical),
		result.CountBySeverity(types.SeverityHigh),
		result.CountBySeverity(types.SeverityMedium),
		result.CountBySeverity(types.SeverityLow))
	r.line("")
}

func (r *renderer) quality(m types.QualityMetrics) {
	r.section("Code Quality Metrics")
	r.line("| Metric | Value |")
	r.line("|--------|-------|")
	r.line("| Complexity | %s |", number(m.Complexity))
	r.line("| Maintainability | %s%% |", number(m.Maintainability))
	r.line("| Test Coverage | %s%% |", number(m.TestCoverage))
	r.line("| Documentation | %s%% |", number(m.Documentation))
	r.line("| Lint Issues | %d |", m.LintIssues)
	r.line("")
}

func (r *renderer) security(findings []types.SecurityFinding) {
	r.section("Security Issues")
	if len(findings) == 0 {
		r.empty("No security issues found.")
		return
	}
	for _, f := range findings {
		r.line("- **%s** %s:%d - %s", f.Severity.Upper(), r.rel(f.File), f.Line, f.Issue)
	}
	r.line("")
}

func (r *renderer) recommendations(recs []string) {
	r.section("Recommendations")
	if len(recs) == 0 {
		r.empty("No recommendations.")
		return
	}
	for i, rec := range recs {
		r.line("%d. %s", i+1, rec)
	}
	r.line("")
}

func (r *renderer) unusedFiles(files []string) {
	r.section("Unused Files")
	if len(files) == 0 {
		r.empty("No unused files found.")
		return
	}
	for i, file := range files {
		if i == MaxUnusedFiles {
			r.line("- ... +%d more", len(files)-MaxUnusedFiles)
			break
		}
		r.line("- %s", r.rel(file))
	}
	r.line("")
}

func (r *renderer) duplicates(groups []types.DuplicateGroup) {
	r.section("Duplicate Code Blocks")
	if len(groups) == 0 {
		r.empty("No duplicate files found.")
		return
	}
	for _, group := range groups {
		files := make([]string, 0, len(group.Files))
		for _, file := range group.Files {
			files = append(files, r.rel(file))
		}
		r.line("- %s (%s%% similarity)", strings.Join(files, ", "), number(group.Similarity*100))
	}
	r.line("")
}

func (r *renderer) dependencies(deps []types.DependencyRecord) {
	r.section("Unused Dependencies")
	if len(deps) == 0 {
		r.empty("No unused dependencies found.")
		return
	}
	for _, dep := range deps {
		r.line("- %s (%s)", dep.Name, dep.Ecosystem)
	}
	r.line("")
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
