package security

import (
	"fmt"
	"regexp"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// Rule is a single line-level security pattern
type Rule struct {
	ID       string         `yaml:"id" json:"id"`
	Pattern  string         `yaml:"pattern" json:"pattern"`
	Unless   string         `yaml:"unless,omitempty" json:"unless,omitempty"`
	Severity types.Severity `yaml:"severity" json:"severity"`
	Issue    string         `yaml:"issue" json:"issue"`
	Fix      string         `yaml:"fix,omitempty" json:"fix,omitempty"`

	pattern *regexp.Regexp
	unless  *regexp.Regexp
}

// Compile validates the rule and prepares its expressions
func (r *Rule) Compile() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Issue == "" {
		return fmt.Errorf("rule %s: issue is required", r.ID)
	}

	severity, err := types.ParseSeverity(string(r.Severity))
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	r.Severity = severity

	if r.pattern, err = regexp.Compile(r.Pattern); err != nil {
		return fmt.Errorf("rule %s: invalid pattern: %w", r.ID, err)
	}
	if r.Unless != "" {
		if r.unless, err = regexp.Compile(r.Unless); err != nil {
			return fmt.Errorf("rule %s: invalid unless pattern: %w", r.ID, err)
		}
	}

	return nil
}

// Match reports whether the rule fires on a single line. Unless is tested
// against the text following each pattern match, so the rule fires when at
// least one match on the line is not excused.
func (r *Rule) Match(line string) bool {
	if r.pattern == nil {
		return false
	}
	if r.unless == nil {
		return r.pattern.MatchString(line)
	}
	for _, loc := range r.pattern.FindAllStringIndex(line, -1) {
		if !r.unless.MatchString(line[loc[1]:]) {
			return true
		}
	}
	return false
}
