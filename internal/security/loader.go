package security

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed rules/*.yaml
var builtinRulesFS embed.FS

type ruleFile struct {
	Rules []*Rule `yaml:"rules"`
}

// LoadBuiltinRules loads the embedded rule catalogue. Files are read in
// lexical order and rules keep their order within each file.
func LoadBuiltinRules() ([]*Rule, error) {
	var rules []*Rule

	err := fs.WalkDir(builtinRulesFS, "rules", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		content, err := builtinRulesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read rule file %s: %w", path, err)
		}

		var file ruleFile
		if err := yaml.Unmarshal(content, &file); err != nil {
			return fmt.Errorf("failed to parse rule file %s: %w", path, err)
		}

		for _, rule := range file.Rules {
			if err := rule.Compile(); err != nil {
				return fmt.Errorf("invalid rule in %s: %w", path, err)
			}
			rules = append(rules, rule)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}

	return rules, nil
}

// LoadRules returns the built-in rules followed by the custom rules from
// project configuration. Rule IDs must be unique.
func LoadRules(custom []config.RuleConfig) ([]*Rule, error) {
	rules, err := LoadBuiltinRules()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rules)+len(custom))
	for _, rule := range rules {
		seen[rule.ID] = true
	}

	for _, c := range custom {
		rule := &Rule{
			ID:       c.ID,
			Pattern:  c.Pattern,
			Unless:   c.Unless,
			Severity: types.Severity(c.Severity),
			Issue:    c.Issue,
			Fix:      c.Fix,
		}
		if err := rule.Compile(); err != nil {
			return nil, fmt.Errorf("invalid custom rule: %w", err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("duplicate security rule id %q", rule.ID)
		}
		seen[rule.ID] = true
		rules = append(rules, rule)
	}

	return rules, nil
}
