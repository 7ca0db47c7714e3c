// Package usage decides whether files and declared dependencies are
// referenced anywhere in the scanned sources. Detection is textual: it looks
// for literal import specifiers, not for resolved module graphs.
package usage

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/types"
)

var (
	// Quoted relative specifiers such as './util', "../lib/b.js" or `./x`
	relativeSpecifier = regexp.MustCompile("['\"`](\\.\\.?/[^'\"`\\s]*)['\"`]")

	// Bare module specifiers used by import-from, side-effect imports,
	// require(...) and dynamic import(...)
	moduleSpecifier = regexp.MustCompile(`(?:\bfrom\s*|\bimport\s+|\brequire\s*\(\s*|\bimport\s*\(\s*)['"]([^'"\s]+)['"]`)
)

// indexedFile holds what reference checks need from one source file
type indexedFile struct {
	record     types.FileRecord
	content    string
	relative   map[string]bool // relative specifiers as written
	resolved   map[string]bool // relative specifiers joined onto the file's directory
	modules    map[string]bool // bare specifiers as written
	moduleRoot map[string]bool // package part of bare specifiers (lodash, @scope/pkg)
}

// Index is the read-only text index of the source files of one scan
type Index struct {
	root  string
	files []*indexedFile
	byKey map[string]*indexedFile
}

// BuildIndex reads every inventory file with a source extension once.
// Unreadable files are left out and therefore reference nothing.
func BuildIndex(ctx context.Context, provider types.Provider, files []types.FileRecord, extensions []string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	index := &Index{
		root:  provider.GetBasePath(),
		byKey: make(map[string]*indexedFile),
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !exts[strings.ToLower(filepath.Ext(file.Path))] {
			continue
		}

		content, err := provider.ReadFile(file.Path)
		if err != nil {
			logger.Debug("Skipping unreadable source file", "path", file.Path, "error", err)
			continue
		}

		entry := newIndexedFile(file, string(content))
		index.files = append(index.files, entry)
		index.byKey[file.Path] = entry
	}

	return index, nil
}

func newIndexedFile(record types.FileRecord, content string) *indexedFile {
	f := &indexedFile{
		record:     record,
		content:    content,
		relative:   make(map[string]bool),
		resolved:   make(map[string]bool),
		modules:    make(map[string]bool),
		moduleRoot: make(map[string]bool),
	}

	dir := filepath.Dir(record.Path)
	for _, match := range relativeSpecifier.FindAllStringSubmatch(content, -1) {
		spec := match[1]
		f.relative[spec] = true
		f.resolved[filepath.Join(dir, filepath.FromSlash(spec))] = true
	}

	for _, match := range moduleSpecifier.FindAllStringSubmatch(content, -1) {
		spec := match[1]
		if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
			continue
		}
		f.modules[spec] = true
		f.moduleRoot[packageRoot(spec)] = true
	}

	return f
}

// Files returns the indexed files as the default reference corpus
func (i *Index) Files() []types.FileRecord {
	records := make([]types.FileRecord, 0, len(i.files))
	for _, f := range i.files {
		records = append(records, f.record)
	}
	return records
}

// Root returns the scan root the index was built for
func (i *Index) Root() string {
	return i.root
}

// Len returns the number of indexed files
func (i *Index) Len() int {
	return len(i.files)
}

func (i *Index) lookup(path string) (*indexedFile, bool) {
	f, ok := i.byKey[path]
	return f, ok
}

// packageRoot strips a subpath from a bare specifier: lodash/fp -> lodash,
// @scope/pkg/sub -> @scope/pkg
func packageRoot(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
