// Package duplicates finds files whose contents are byte-for-byte identical.
package duplicates

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// ExactSimilarity is reported for every group; only exact copies are grouped
const ExactSimilarity = 1.0

// Hash is a 32-bit polynomial rolling hash (h = h*31 + b) over the content
func Hash(content []byte) uint32 {
	var h uint32
	for _, b := range content {
		h = h*31 + uint32(b)
	}
	return h
}

// Detector groups source files with identical content
type Detector struct {
	provider   types.Provider
	extensions map[string]bool
	hash       func([]byte) uint32
	logger     *slog.Logger
}

// NewDetector creates a detector for files with the given extensions
func NewDetector(provider types.Provider, extensions []string, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		provider:   provider,
		extensions: extensionSet(extensions),
		hash:       Hash,
		logger:     logger,
	}
}

type candidate struct {
	path    string
	content []byte
}

// Detect returns every group of two or more files with identical bytes.
// Files sharing a hash are split by a full byte comparison so a hash
// collision never produces a false group.
func (d *Detector) Detect(ctx context.Context, files []types.FileRecord) ([]types.DuplicateGroup, error) {
	buckets := make(map[uint32][]candidate)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !d.extensions[strings.ToLower(filepath.Ext(file.Path))] {
			continue
		}

		content, err := d.provider.ReadFile(file.Path)
		if err != nil {
			d.logger.Debug("Skipping unreadable file", "path", file.Path, "error", err)
			continue
		}

		h := d.hash(content)
		buckets[h] = append(buckets[h], candidate{path: file.Path, content: content})
	}

	groups := []types.DuplicateGroup{}
	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		for _, class := range partition(bucket) {
			if len(class) < 2 {
				continue
			}
			sort.Strings(class)
			groups = append(groups, types.DuplicateGroup{Files: class, Similarity: ExactSimilarity})
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Files[0] < groups[j].Files[0]
	})

	return groups, nil
}

// partition splits a hash bucket into classes of byte-equal content
func partition(bucket []candidate) [][]string {
	var classes [][]string
	var representatives [][]byte

	for _, c := range bucket {
		placed := false
		for i, rep := range representatives {
			if bytes.Equal(rep, c.content) {
				classes[i] = append(classes[i], c.path)
				placed = true
				break
			}
		}
		if !placed {
			representatives = append(representatives, c.content)
			classes = append(classes, []string{c.path})
		}
	}

	return classes
}

func extensionSet(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = true
	}
	return set
}
