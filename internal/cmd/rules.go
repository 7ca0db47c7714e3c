package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/security"
	"github.com/spf13/cobra"
)

func newRulesCommand() *cobra.Command {
	var format string

	rulesCmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the security rules a scan would apply",
		Long: `List the built-in security rules followed by the custom rules declared in
the project configuration (.repo-analyzer.yml) at path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := resolveScanPath(args)
			if err != nil {
				return err
			}
			project, err := config.LoadConfig(absPath)
			if err != nil {
				return err
			}
			rules, err := security.LoadRules(project.SecurityRules())
			if err != nil {
				return err
			}
			return Output(cmd.OutOrStdout(), &RulesResult{Rules: rules}, format)
		},
	}
	setupFormatFlag(rulesCmd, &format)

	return rulesCmd
}

// RulesResult lists security rules in evaluation order
type RulesResult struct {
	Rules []*security.Rule
}

func (r *RulesResult) ToJSON() interface{} {
	return r.Rules
}

func (r *RulesResult) ToText(w io.Writer) {
	idWidth := len("ID")
	for _, rule := range r.Rules {
		idWidth = max(idWidth, len(rule.ID))
	}

	fmt.Fprintf(w, "%-*s  %-8s  %s\n", idWidth, "ID", "SEVERITY", "ISSUE")
	fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", idWidth), strings.Repeat("-", 8), strings.Repeat("-", 5))
	for _, rule := range r.Rules {
		fmt.Fprintf(w, "%-*s  %-8s  %s\n", idWidth, rule.ID, rule.Severity.Upper(), rule.Issue)
	}
	fmt.Fprintf(w, "\nTotal: %d rules\n", len(r.Rules))
}
