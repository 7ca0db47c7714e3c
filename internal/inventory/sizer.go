package inventory

import (
	"context"
	"log/slog"

	"github.com/petrarca/repo-analyzer/internal/progress"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// Sizer stats collected paths into file records
type Sizer struct {
	provider types.Provider
	progress *progress.Progress
	logger   *slog.Logger
}

// NewSizer creates a sizer reading through the provider
func NewSizer(provider types.Provider, prog *progress.Progress, logger *slog.Logger) *Sizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sizer{provider: provider, progress: prog, logger: logger}
}

// Size stats every path in order. A path that can no longer be stat'd
// (deleted or unreadable since enumeration) is left out of the records.
func (s *Sizer) Size(ctx context.Context, paths []string) ([]types.FileRecord, int64, error) {
	records := make([]types.FileRecord, 0, len(paths))
	var total int64

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		info, err := s.provider.Stat(path)
		if err != nil || info.IsDir() {
			s.logger.Debug("Dropping file that cannot be stat'd", "path", path, "error", err)
			s.progress.Skipped(path, "vanished")
			continue
		}

		records = append(records, types.FileRecord{Path: path, SizeBytes: info.Size})
		total += info.Size
	}

	return records, total, nil
}
