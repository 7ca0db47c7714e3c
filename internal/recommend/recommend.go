// Package recommend turns scan findings into ordered, human-readable actions.
package recommend

import (
	"fmt"
	"strconv"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// Thresholds that trigger the quality recommendations
const (
	CoverageTarget  = 80.0
	ComplexityLimit = 10.0
	LintIssuesLimit = 50
)

// Findings is the input of Generate
type Findings struct {
	UnusedFiles        []string
	DuplicateGroups    []types.DuplicateGroup
	UnusedDependencies []types.DependencyRecord
	SecurityFindings   []types.SecurityFinding
	QualityMetrics     types.QualityMetrics
}

// FromResult extracts the findings of a scan result
func FromResult(result *types.ScanResult) Findings {
	return Findings{
		UnusedFiles:        result.UnusedFiles,
		DuplicateGroups:    result.DuplicateGroups,
		UnusedDependencies: result.UnusedDependencies,
		SecurityFindings:   result.SecurityFindings,
		QualityMetrics:     result.QualityMetrics,
	}
}

// Generate evaluates every rule in a fixed order. Rules are independent:
// an earlier rule firing never suppresses a later one.
func Generate(f Findings) []string {
	recs := []string{}

	if n := len(f.UnusedFiles); n > 0 {
		recs = append(recs, fmt.Sprintf("Remove %d unused files to reduce codebase size", n))
	}
	if n := len(f.DuplicateGroups); n > 0 {
		recs = append(recs, fmt.Sprintf("Consolidate %d duplicate file groups into shared modules", n))
	}
	if n := len(f.UnusedDependencies); n > 0 {
		recs = append(recs, fmt.Sprintf("Remove %d unused dependencies from the manifest", n))
	}

	critical := 0
	for _, finding := range f.SecurityFindings {
		if finding.Severity == types.SeverityCritical {
			critical++
		}
	}
	if critical > 0 {
		recs = append(recs, fmt.Sprintf("URGENT: Fix %d critical security issues immediately", critical))
	}
	if n := len(f.SecurityFindings); n > 0 {
		recs = append(recs, fmt.Sprintf("Address %d security issues", n))
	}

	m := f.QualityMetrics
	if m.TestCoverage < CoverageTarget {
		recs = append(recs, fmt.Sprintf("Increase test coverage from %s%% to %s%%", number(m.TestCoverage), number(CoverageTarget)))
	}
	if m.Complexity > ComplexityLimit {
		recs = append(recs, fmt.Sprintf("Reduce code complexity (current: %s)", number(m.Complexity)))
	}
	if m.LintIssues > LintIssuesLimit {
		recs = append(recs, fmt.Sprintf("Fix %d linting issues", m.LintIssues))
	}

	return recs
}

// number prints 65 as "65" and 72.5 as "72.5"
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
