package types

import "time"

// FileRecord is one entry of the scan inventory
type FileRecord struct {
	Path      string `json:"path" yaml:"path"`
	SizeBytes int64  `json:"sizeBytes" yaml:"sizeBytes"`
}

// DuplicateGroup is a set of files with byte-identical content
type DuplicateGroup struct {
	Files      []string `json:"files" yaml:"files"`
	Similarity float64  `json:"similarity" yaml:"similarity"`
}

// DependencyRecord is a declared manifest dependency
type DependencyRecord struct {
	Name      string `json:"name" yaml:"name"`
	Ecosystem string `json:"ecosystem" yaml:"ecosystem"`
	Used      bool   `json:"used" yaml:"used"`
}

// SecurityFinding is a single rule match on a single source line
type SecurityFinding struct {
	File     string   `json:"file" yaml:"file"`
	Line     int      `json:"line" yaml:"line"`
	Severity Severity `json:"severity" yaml:"severity"`
	Issue    string   `json:"issue" yaml:"issue"`
	Fix      string   `json:"fix" yaml:"fix"`
	Rule     string   `json:"rule" yaml:"rule"`
}

// QualityMetrics holds the aggregate quality numbers of a scan
type QualityMetrics struct {
	Complexity      float64 `json:"complexity" yaml:"complexity"`
	Maintainability float64 `json:"maintainability" yaml:"maintainability"`
	TestCoverage    float64 `json:"testCoverage" yaml:"testCoverage"`
	Documentation   float64 `json:"documentation" yaml:"documentation"`
	LintIssues      int     `json:"lintIssues" yaml:"lintIssues"`
}

// ScanResult is the complete outcome of one analyzer run.
// All slices are non-nil so empty results serialize as [].
type ScanResult struct {
	TotalFiles         int                `json:"totalFiles" yaml:"totalFiles"`
	TotalSizeBytes     int64              `json:"totalSizeBytes" yaml:"totalSizeBytes"`
	UnusedFiles        []string           `json:"unusedFiles" yaml:"unusedFiles"`
	DuplicateGroups    []DuplicateGroup   `json:"duplicateGroups" yaml:"duplicateGroups"`
	UnusedDependencies []DependencyRecord `json:"unusedDependencies" yaml:"unusedDependencies"`
	SecurityFindings   []SecurityFinding  `json:"securityFindings" yaml:"securityFindings"`
	QualityMetrics     QualityMetrics     `json:"qualityMetrics" yaml:"qualityMetrics"`
	Recommendations    []string           `json:"recommendations" yaml:"recommendations"`
	GeneratedAt        time.Time          `json:"generatedAt" yaml:"generatedAt"`
}

// NewScanResult returns a result with every list initialized
func NewScanResult() *ScanResult {
	return &ScanResult{
		UnusedFiles:        []string{},
		DuplicateGroups:    []DuplicateGroup{},
		UnusedDependencies: []DependencyRecord{},
		SecurityFindings:   []SecurityFinding{},
		Recommendations:    []string{},
	}
}

// CountBySeverity returns how many findings carry the given severity
func (r *ScanResult) CountBySeverity(severity Severity) int {
	count := 0
	for _, finding := range r.SecurityFindings {
		if finding.Severity == severity {
			count++
		}
	}
	return count
}
