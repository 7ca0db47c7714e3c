package scanner

import (
	"context"
	"time"

	"github.com/petrarca/repo-analyzer/internal/git"
	"github.com/petrarca/repo-analyzer/internal/license"
	"github.com/petrarca/repo-analyzer/internal/metadata"
	"github.com/petrarca/repo-analyzer/internal/report"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// Run performs a scan, describes it and writes the Markdown report. The
// report is the only file the analyzer writes.
func (s *Scanner) Run(ctx context.Context) (*types.ScanResult, *metadata.ScanMetadata, error) {
	start := time.Now()

	result, err := s.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	meta := s.Metadata()
	meta.SetDuration(time.Since(start))

	s.progress.FileWriting(s.reportPath)
	if err := report.Write(s.reportPath, result, meta); err != nil {
		return nil, nil, err
	}
	s.progress.FileWritten(s.reportPath)
	s.logger.Info("Report written", "path", s.reportPath)

	return result, meta, nil
}

// Metadata describes the scan root: repository and licenses when known
func (s *Scanner) Metadata() *metadata.ScanMetadata {
	root := s.provider.GetBasePath()

	meta := metadata.NewScanMetadata(root)
	meta.ReportPath = s.reportPath
	meta.QualityProvider = s.quality.Name()
	meta.RuleCount = len(s.rules)
	meta.Parallel = s.parallel

	t1 := time.Now()
	meta.SetRepository(git.GetRepoInfo(root))
	meta.SetLicenses(license.Names(license.NewDetector().Detect(root)))
	s.logger.Debug("Retrieved repository metadata", "duration", time.Since(t1))

	return meta
}
