package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/provider"
	"github.com/petrarca/repo-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sourceExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

func builtinScanner(t *testing.T, p types.Provider) *Scanner {
	t.Helper()
	rules, err := LoadBuiltinRules()
	require.NoError(t, err)
	return NewScanner(p, rules, sourceExtensions, nil)
}

func TestLoadBuiltinRules(t *testing.T) {
	rules, err := LoadBuiltinRules()
	require.NoError(t, err)

	ids := make([]string, 0, len(rules))
	for _, rule := range rules {
		ids = append(ids, rule.ID)
		assert.NotEmpty(t, rule.Issue, rule.ID)
		assert.NotEmpty(t, rule.Fix, rule.ID)
	}
	assert.Equal(t, []string{
		"env-access",
		"eval",
		"function-constructor",
		"dangerously-set-inner-html",
		"inner-html",
		"hardcoded-credential",
	}, ids)
}

func TestBuiltinRules(t *testing.T) {
	tests := []struct {
		line  string
		rules []string
	}{
		{"const url = process.env.API_URL", []string{"env-access"}},
		{"const url = process.env['API_URL']", []string{"env-access"}},
		{"const url = process.env.API_URL || 'http://localhost'", nil},
		{"const port = process.env.PORT ?? 3000", nil},
		{"const a = process.env.A || 'x', b = process.env.SECRET_URL", []string{"env-access"}},
		{"const a = process.env.A, b = process.env.B ?? 'y'", []string{"env-access"}},
		{"const a = process.env.A || 'x', b = process.env['B'] ?? 'y'", nil},
		{"const result = eval(input)", []string{"eval"}},
		{"window.eval (code)", []string{"eval"}},
		{"const evaluate = (x) => x", nil},
		{"const fn = new Function('a', 'return a')", []string{"function-constructor"}},
		{"<div dangerouslySetInnerHTML={{ __html: html }} />", []string{"dangerously-set-inner-html"}},
		{"el.innerHTML = userInput", []string{"inner-html"}},
		{"el.outerHTML += more", []string{"inner-html"}},
		{"if (el.innerHTML == '') {}", nil},
		{"const text = el.innerHTML", nil},
		{`const password = "hunter22"`, []string{"hardcoded-credential"}},
		{`  "apiKey": "abc123def"`, []string{"hardcoded-credential"}},
		{`const API_KEY = 'sk-live-1234'`, []string{"hardcoded-credential"}},
		{`const password = process.env.DB_PASSWORD`, []string{"env-access"}},
		{`if (password === "") {}`, nil},
		{`const token = ""`, nil},
		{`eval(process.env.CODE)`, []string{"env-access", "eval"}},
	}

	rules, err := LoadBuiltinRules()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var fired []string
			for _, rule := range rules {
				if rule.Match(tt.line) {
					fired = append(fired, rule.ID)
				}
			}
			assert.Equal(t, tt.rules, fired)
		})
	}
}

func TestRuleMatch_UnlessAppliesPerMatch(t *testing.T) {
	rule := &Rule{ID: "todo", Pattern: `TODO`, Unless: `^\(\w+\)`, Severity: "low", Issue: "Unowned TODO"}
	require.NoError(t, rule.Compile())

	assert.True(t, rule.Match("// TODO fix"))
	assert.False(t, rule.Match("// TODO(ana) fix"))
	assert.True(t, rule.Match("// TODO(ana) fix, TODO later"))
	assert.False(t, rule.Match("// TODO(ana) and TODO(bo)"))
	assert.False(t, rule.Match("// nothing here"))
}

func TestScan_MixedDefaultsOnOneLine(t *testing.T) {
	p := provider.NewFakeProvider("/repo")
	p.AddFile("config.ts", "const a = process.env.A || 'x', b = process.env.SECRET_URL\nconst c = process.env.C ?? 'z'\n")

	findings, err := builtinScanner(t, p).Scan(context.Background(), []types.FileRecord{{Path: "/repo/config.ts"}})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, "env-access", findings[0].Rule)
}

func TestScan_EvalOnLine42(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "const x = 1"
	}
	lines[41] = "const result = eval(input)"

	p := provider.NewFakeProvider("/repo")
	path := p.AddFile("src/x.js", strings.Join(lines, "\n"))

	findings, err := builtinScanner(t, p).Scan(context.Background(), []types.FileRecord{{Path: path}})
	require.NoError(t, err)

	assert.Equal(t, []types.SecurityFinding{{
		File:     "/repo/src/x.js",
		Line:     42,
		Severity: types.SeverityCritical,
		Issue:    "Use of eval() detected",
		Fix:      "Parse the input explicitly instead of evaluating it as code",
		Rule:     "eval",
	}}, findings)
}

func TestScan_Ordering(t *testing.T) {
	p := provider.NewFakeProvider("/repo")
	b := p.AddFile("b.ts", "el.innerHTML = x\r\nconst s = eval(process.env.CODE)\r\n")
	a := p.AddFile("a.ts", "ok\nconst token = 'abcdef'\n")
	md := p.AddFile("README.md", "eval(x)")

	findings, err := builtinScanner(t, p).Scan(context.Background(), []types.FileRecord{{Path: b}, {Path: md}, {Path: a}})
	require.NoError(t, err)

	type key struct {
		file string
		line int
		rule string
	}
	var got []key
	for _, f := range findings {
		got = append(got, key{f.File, f.Line, f.Rule})
	}
	assert.Equal(t, []key{
		{"/repo/a.ts", 2, "hardcoded-credential"},
		{"/repo/b.ts", 1, "inner-html"},
		{"/repo/b.ts", 2, "env-access"},
		{"/repo/b.ts", 2, "eval"},
	}, got)
}

func TestScan_SkipsUnreadableFiles(t *testing.T) {
	p := provider.NewFakeProvider("/repo")
	a := p.AddFile("a.ts", "eval(x)")
	b := p.AddFile("b.ts", "eval(y)")
	p.FailRead("a.ts", errors.New("permission denied"))

	findings, err := builtinScanner(t, p).Scan(context.Background(), []types.FileRecord{{Path: a}, {Path: b}})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, b, findings[0].File)
}

func TestScan_NoFindings(t *testing.T) {
	p := provider.NewFakeProvider("/repo")
	a := p.AddFile("a.ts", "export const a = 1\n")

	findings, err := builtinScanner(t, p).Scan(context.Background(), []types.FileRecord{{Path: a}})
	require.NoError(t, err)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestLoadRules_Custom(t *testing.T) {
	rules, err := LoadRules([]config.RuleConfig{{
		ID:       "debugger",
		Pattern:  `\bdebugger\b`,
		Severity: "LOW",
		Issue:    "Debugger statement left in code",
	}})
	require.NoError(t, err)

	last := rules[len(rules)-1]
	assert.Equal(t, "debugger", last.ID)
	assert.Equal(t, types.SeverityLow, last.Severity)
	assert.True(t, last.Match("  debugger;"))
}

func TestLoadRules_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rule    config.RuleConfig
		message string
	}{
		{"bad regex", config.RuleConfig{ID: "x", Pattern: "(", Severity: "low", Issue: "x"}, "invalid pattern"},
		{"bad unless", config.RuleConfig{ID: "x", Pattern: "a", Unless: "[", Severity: "low", Issue: "x"}, "invalid unless pattern"},
		{"bad severity", config.RuleConfig{ID: "x", Pattern: "a", Severity: "severe", Issue: "x"}, "invalid severity"},
		{"duplicate id", config.RuleConfig{ID: "eval", Pattern: "a", Severity: "low", Issue: "x"}, "duplicate security rule id"},
		{"missing issue", config.RuleConfig{ID: "x", Pattern: "a", Severity: "low"}, "issue is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules([]config.RuleConfig{tt.rule})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
