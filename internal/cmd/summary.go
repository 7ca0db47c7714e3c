package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/petrarca/repo-analyzer/internal/metadata"
	"github.com/petrarca/repo-analyzer/internal/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AA5B1"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5534B"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#57AB5A"))
)

// ScanSummary is the stdout summary of a completed scan
type ScanSummary struct {
	Result   *types.ScanResult
	Metadata *metadata.ScanMetadata
	Styled   bool
}

type scanSummaryJSON struct {
	Metadata *metadata.ScanMetadata `json:"metadata" yaml:"metadata"`
	Result   *types.ScanResult      `json:"result" yaml:"result"`
}

func (s *ScanSummary) ToJSON() interface{} {
	return &scanSummaryJSON{Metadata: s.Metadata, Result: s.Result}
}

func (s *ScanSummary) ToText(w io.Writer) {
	r := s.Result

	fmt.Fprintln(w, s.paint(titleStyle, fmt.Sprintf("Scanned %s files (%s)", humanize.Comma(int64(r.TotalFiles)), humanize.Bytes(uint64(r.TotalSizeBytes)))))
	s.row(w, "Unused files", fmt.Sprint(len(r.UnusedFiles)))
	s.row(w, "Duplicate groups", fmt.Sprint(len(r.DuplicateGroups)))
	s.row(w, "Unused dependencies", fmt.Sprint(len(r.UnusedDependencies)))

	issues := fmt.Sprintf("%d (%d critical)", len(r.SecurityFindings), r.CountBySeverity(types.SeverityCritical))
	if r.CountBySeverity(types.SeverityCritical) > 0 {
		issues = s.paint(criticalStyle, issues)
	}
	s.row(w, "Security issues", issues)
	s.row(w, "Test coverage", fmt.Sprintf("%s%%", humanize.Ftoa(r.QualityMetrics.TestCoverage)))
	s.row(w, "Complexity", humanize.Ftoa(r.QualityMetrics.Complexity))

	fmt.Fprintln(w)
	if len(r.Recommendations) == 0 {
		fmt.Fprintln(w, s.paint(okStyle, "No recommendations"))
	} else {
		fmt.Fprintln(w, s.paint(titleStyle, "Recommendations"))
		for i, rec := range r.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
	}

	if s.Metadata != nil && s.Metadata.ReportPath != "" {
		fmt.Fprintln(w)
		s.row(w, "Report", s.Metadata.ReportPath)
	}
}

func (s *ScanSummary) row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", s.paint(labelStyle, fmt.Sprintf("%-20s", label+":")), value)
}

func (s *ScanSummary) paint(style lipgloss.Style, text string) string {
	if !s.Styled {
		return text
	}
	return style.Render(text)
}
