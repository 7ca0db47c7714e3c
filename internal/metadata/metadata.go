// Package metadata describes a scan run alongside its result.
package metadata

import (
	"path/filepath"
	"time"

	"github.com/petrarca/repo-analyzer/internal/git"
)

// FormatVersion is the version of the summary and report layout. It changes
// when fields are renamed or removed.
const FormatVersion = "1.0"

// ScanMetadata contains information about the scan execution
type ScanMetadata struct {
	Timestamp       string        `json:"timestamp" yaml:"timestamp"`
	ScanPath        string        `json:"scanPath" yaml:"scanPath"`
	ReportPath      string        `json:"reportPath,omitempty" yaml:"reportPath,omitempty"`
	FormatVersion   string        `json:"formatVersion" yaml:"formatVersion"`
	DurationMs      int64         `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
	QualityProvider string        `json:"qualityProvider,omitempty" yaml:"qualityProvider,omitempty"`
	RuleCount       int           `json:"ruleCount,omitempty" yaml:"ruleCount,omitempty"`
	Parallel        bool          `json:"parallel" yaml:"parallel"`
	Repository      *git.RepoInfo `json:"repository,omitempty" yaml:"repository,omitempty"`
	Licenses        []string      `json:"licenses,omitempty" yaml:"licenses,omitempty"`
}

// NewScanMetadata creates a new scan metadata instance
func NewScanMetadata(scanPath string) *ScanMetadata {
	absPath, err := filepath.Abs(scanPath)
	if err != nil {
		absPath = scanPath
	}

	return &ScanMetadata{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ScanPath:      absPath,
		FormatVersion: FormatVersion,
	}
}

// SetDuration sets the scan duration in milliseconds
func (m *ScanMetadata) SetDuration(duration time.Duration) {
	m.DurationMs = duration.Milliseconds()
}

// SetRepository records git information when the root is inside a repository
func (m *ScanMetadata) SetRepository(info *git.RepoInfo) {
	m.Repository = info
}

// SetLicenses records the licenses detected at the root
func (m *ScanMetadata) SetLicenses(licenses []string) {
	if len(licenses) > 0 {
		m.Licenses = licenses
	}
}
