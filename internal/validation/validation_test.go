package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAML_ValidProjectConfig(t *testing.T) {
	validYAML := `
include:
  - "src/**/*.{ts,tsx}"
exclude:
  - "**/__generated__/**"
  - "*.log"
source_extensions: [".ts", ".tsx"]
module_extensions: [".ts"]
entry_points:
  names: ["index", "cli"]
  dirs: ["pages", "(routes)"]
manifests:
  - package.json
  - services/api/go.mod
report:
  path: docs/analysis.md
quality:
  provider: baseline
  baseline:
    complexity: 6.5
    test_coverage: 91
    lint_issues: 4
security:
  rules:
    - id: child-process
      pattern: "child_process\\.exec\\("
      severity: high
      issue: "Shell command execution"
      fix: "Use execFile with an argument list"
gitignore: false
`

	err := ValidateYAML(ProjectConfigSchema, []byte(validYAML))
	require.NoError(t, err)
}

func TestValidateYAML_InvalidProjectConfig(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		expect string
	}{
		{
			name: "absolute path in exclude",
			yaml: `
exclude:
  - "/absolute/path"
`,
			expect: "does not match pattern",
		},
		{
			name: "extension without dot",
			yaml: `
source_extensions: ["ts"]
`,
			expect: "does not match pattern",
		},
		{
			name: "unknown manifest",
			yaml: `
manifests: ["requirements.txt"]
`,
			expect: "does not match pattern",
		},
		{
			name: "unknown quality provider",
			yaml: `
quality:
  provider: sonar
`,
			expect: "value must be one of",
		},
		{
			name: "coverage above 100",
			yaml: `
quality:
  baseline:
    test_coverage: 120
`,
			expect: "must be <=",
		},
		{
			name: "rule without pattern",
			yaml: `
security:
  rules:
    - id: missing-pattern
      severity: low
      issue: "Something"
`,
			expect: "missing properties",
		},
		{
			name: "unknown top-level key",
			yaml: `
techs: []
`,
			expect: "not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYAML(ProjectConfigSchema, []byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)

			var validationErr ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestValidateYAML_MalformedYAML(t *testing.T) {
	err := ValidateYAML(ProjectConfigSchema, []byte("include: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateJSON_ValidConfig(t *testing.T) {
	config := map[string]interface{}{
		"exclude": []interface{}{"node_modules", "**/__tests__/**"},
		"report":  map[string]interface{}{"path": "REPORT.md"},
		"quality": map[string]interface{}{
			"baseline": map[string]interface{}{"complexity": 12.0, "lint_issues": 60},
		},
	}

	assert.NoError(t, ValidateJSON(ProjectConfigSchema, config))
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationError{}.Error())
	assert.Equal(t, "validation failed: a", ValidationError{Errors: []string{"a"}}.Error())
	assert.Equal(t, "validation failed: a; b", ValidationError{Errors: []string{"a", "b"}}.Error())
}

func TestListAvailableSchemas(t *testing.T) {
	schemas, err := ListAvailableSchemas()
	require.NoError(t, err)
	assert.Contains(t, schemas, ProjectConfigSchema)
}

func TestValidateJSON_SchemaNotFound(t *testing.T) {
	err := ValidateJSON("nonexistent-schema.json", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}
