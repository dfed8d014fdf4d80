package config

import "strconv"

// ProjectType represents the kind of codebase being scanned
type ProjectType string

const (
	ProjectTypeGeneric ProjectType = "generic"
	ProjectTypePython  ProjectType = "python"
	ProjectTypeNode    ProjectType = "node"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds file selection presets for different project types
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// StrictnessPreset holds rule thresholds for different strictness levels
type StrictnessPreset struct {
	MaxFunctionStatements int
	MaxParameters         int
	MaxNestingDepth       int
	MagicStringRepeats    int
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: []string{
				"*.py", "*.js", "*.jsx", "*.ts", "*.tsx",
			},
			ExcludePatterns: []string{
				"node_modules", "venv", ".venv", "__pycache__",
				"dist", "build", ".git", "*.min.js",
			},
		},
		ProjectTypePython: {
			IncludePatterns: []string{
				"*.py",
			},
			ExcludePatterns: []string{
				"venv", ".venv", "site-packages", "__pycache__",
				".tox", ".git", "build", "dist",
			},
		},
		ProjectTypeNode: {
			IncludePatterns: []string{
				"*.js", "*.jsx", "*.ts", "*.tsx", "*.mjs", "*.cjs",
			},
			ExcludePatterns: []string{
				"node_modules", "dist", "build", "coverage",
				".git", "*.min.js", "*.bundle.js",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MaxFunctionStatements: 80,
			MaxParameters:         10,
			MaxNestingDepth:       6,
			MagicStringRepeats:    5,
		},
		StrictnessStandard: {
			MaxFunctionStatements: DefaultMaxFunctionStatements,
			MaxParameters:         DefaultMaxParameters,
			MaxNestingDepth:       DefaultMaxNestingDepth,
			MagicStringRepeats:    DefaultMagicStringRepeats,
		},
		StrictnessStrict: {
			MaxFunctionStatements: 30,
			MaxParameters:         5,
			MaxNestingDepth:       3,
			MagicStringRepeats:    2,
		},
	}
}

// GetFullConfigTemplate returns the documented rrscan.yaml template
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset := GetProjectPresets()[projectType]
	strict := GetStrictnessPresets()[strictness]

	return `# rrscan configuration
# Documentation: https://github.com/reviewrabbit/rrscan

rules:
  # Rule ids to run; empty means every registered rule
  enabled: []

  # Per-rule severity overrides (critical, high, medium, low, info)
  severity_overrides: {}

  # Severity of the synthetic issue recorded for unparseable files
  syntax_error_severity: critical

  # Quality thresholds
  max_function_statements: ` + strconv.Itoa(strict.MaxFunctionStatements) + `
  max_parameters: ` + strconv.Itoa(strict.MaxParameters) + `
  max_nesting_depth: ` + strconv.Itoa(strict.MaxNestingDepth) + `
  magic_string_repeats: ` + strconv.Itoa(strict.MagicStringRepeats) + `

analysis:
  # File patterns to include (glob patterns)
  include_patterns: ` + formatYAMLList(preset.IncludePatterns) + `

  # File and directory patterns to exclude
  exclude_patterns: ` + formatYAMLList(preset.ExcludePatterns) + `

  # Scan limits
  max_files: ` + strconv.Itoa(DefaultMaxFiles) + `
  max_file_size_bytes: ` + strconv.FormatInt(DefaultMaxFileSizeBytes, 10) + `

  # Skip files ignored by .gitignore
  respect_gitignore: true

  # Parallel analysis workers (0 = one per CPU)
  workers: 0

output:
  # Output format: text, json, yaml, markdown, html
  format: text

  # Render per-function metrics in reports
  show_details: false

ai:
  # Send files for AI review when the review command runs
  enabled: true
  base_url: ` + DefaultAIBaseURL + `
  model: ` + DefaultAIModel + `
  # Environment variable holding the API key (never stored in this file)
  api_key_env: ` + DefaultAIAPIKeyEnv + `
  timeout_seconds: ` + strconv.Itoa(DefaultAITimeoutSeconds) + `
  # At most this many files are sent per review run
  max_files_per_review: ` + strconv.Itoa(DefaultAIMaxFilesPerReview) + `
`
}

// GetMinimalConfigTemplate returns a minimal rrscan.yaml template
func GetMinimalConfigTemplate() string {
	return `# rrscan configuration (minimal)
# See full options: https://github.com/reviewrabbit/rrscan

rules:
  max_function_statements: ` + strconv.Itoa(DefaultMaxFunctionStatements) + `
  max_parameters: ` + strconv.Itoa(DefaultMaxParameters) + `

analysis:
  include_patterns: ["*.py", "*.js", "*.ts"]
  exclude_patterns: ["node_modules", "venv", ".git"]

output:
  format: text
`
}

// formatYAMLList renders a flow-style YAML list on one line
func formatYAMLList(items []string) string {
	out := "["
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += `"` + item + `"`
	}
	return out + "]"
}
