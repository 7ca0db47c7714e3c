package usage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// FileDetector finds module files that nothing else references
type FileDetector struct {
	engine     *Engine
	root       string
	moduleExts map[string]bool
	entryNames map[string]bool
	entryDirs  map[string]bool
}

// NewFileDetector creates an unused-file detector. Entry-point names are
// compared case-insensitively against the base name without extension.
func NewFileDetector(engine *Engine, moduleExts, entryNames, entryDirs []string) *FileDetector {
	d := &FileDetector{
		engine:     engine,
		root:       engine.Index().Root(),
		moduleExts: make(map[string]bool, len(moduleExts)),
		entryNames: make(map[string]bool, len(entryNames)),
		entryDirs:  make(map[string]bool, len(entryDirs)),
	}
	for _, ext := range moduleExts {
		d.moduleExts[strings.ToLower(ext)] = true
	}
	for _, name := range entryNames {
		d.entryNames[strings.ToLower(name)] = true
	}
	for _, dir := range entryDirs {
		d.entryDirs[dir] = true
	}
	return d
}

// Detect returns the inventory module files that are neither entry points
// nor referenced by any indexed file, in inventory order
func (d *FileDetector) Detect(ctx context.Context, inventory []types.FileRecord) ([]string, error) {
	corpus := d.engine.Index().Files()
	unused := []string{}

	for _, file := range inventory {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext := filepath.Ext(file.Path)
		if !d.moduleExts[strings.ToLower(ext)] {
			continue
		}
		if d.IsEntryPoint(file.Path) {
			continue
		}

		name := strings.TrimSuffix(filepath.Base(file.Path), ext)
		if !d.engine.IsReferenced(name, file.Path, corpus) {
			unused = append(unused, file.Path)
		}
	}

	return unused, nil
}

// IsEntryPoint reports whether a file is exempt from unused detection: its
// base name is an entry-point name, or a directory between the scan root
// and the file is an entry directory
func (d *FileDetector) IsEntryPoint(path string) bool {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if d.entryNames[strings.ToLower(name)] {
		return true
	}

	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return false
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, segment := range segments[:len(segments)-1] {
		if d.entryDirs[segment] {
			return true
		}
	}
	return false
}
