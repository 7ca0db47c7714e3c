// Package license detects the licenses declared at the scan root.
package license

import (
	"math"
	"sort"

	"github.com/go-enry/go-license-detector/v4/licensedb"
	"github.com/go-enry/go-license-detector/v4/licensedb/filer"
)

// MinConfidence is the lowest match confidence that is reported
const MinConfidence = 0.9

// Match represents a detected license
type Match struct {
	License    string  `json:"license" yaml:"license"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	File       string  `json:"file" yaml:"file"`
}

// Detector handles file-based license detection
type Detector struct{}

// NewDetector creates a new license detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the licenses found in LICENSE-like files of a directory,
// sorted by license ID. Directories without a license yield nil.
func (d *Detector) Detect(dirPath string) []Match {
	fs, err := filer.FromDirectory(dirPath)
	if err != nil {
		return nil
	}

	matches, err := licensedb.Detect(fs)
	if err != nil {
		return nil
	}

	var licenses []Match
	for licenseID, match := range matches {
		if match.Confidence > MinConfidence {
			licenses = append(licenses, Match{
				License:    licenseID,
				Confidence: math.Round(float64(match.Confidence)*100) / 100,
				File:       match.File,
			})
		}
	}

	sort.Slice(licenses, func(i, j int) bool {
		return licenses[i].License < licenses[j].License
	})

	return licenses
}

// Names returns the license IDs of matches
func Names(matches []Match) []string {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.License)
	}
	return names
}
