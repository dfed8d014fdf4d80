package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/constants"
	"github.com/reviewrabbit/rrscan/internal/rules"
)

// Default rule thresholds
const (
	// DefaultMaxFunctionStatements is the statement count above which a
	// function is reported as too long
	DefaultMaxFunctionStatements = 50

	// DefaultMaxParameters is the parameter count ceiling
	DefaultMaxParameters = 7

	// DefaultMaxNestingDepth is the control-structure nesting ceiling
	DefaultMaxNestingDepth = 4

	// DefaultMagicStringRepeats is how many verbatim repeats of one
	// string literal are tolerated before it is reported
	DefaultMagicStringRepeats = 3
)

// Default scan limits
const (
	// DefaultMaxFiles caps how many files one invocation analyzes
	DefaultMaxFiles = 1000

	// DefaultMaxFileSizeBytes skips files larger than this
	DefaultMaxFileSizeBytes = 1 << 20
)

// Default AI review settings
const (
	DefaultAIBaseURL        = "https://api.openai.com/v1"
	DefaultAIModel          = "gpt-4o-mini"
	DefaultAIAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultAITimeoutSeconds = 60

	// DefaultAIMaxFilesPerReview caps how many files one review run sends out
	DefaultAIMaxFilesPerReview = 10
)

// Config represents the main configuration structure
type Config struct {
	// Rules holds rule selection, severity overrides, and thresholds
	Rules RulesConfig `json:"rules" mapstructure:"rules" yaml:"rules"`

	// Analysis holds file selection and scan limits
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Output holds report formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// AI holds the AI review collaborator configuration
	AI AIConfig `json:"ai" mapstructure:"ai" yaml:"ai"`
}

// RulesConfig holds rule selection and tuning
type RulesConfig struct {
	// Enabled lists rule ids to run; empty means all registered rules
	Enabled []string `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// SeverityOverrides maps rule id to a severity name replacing the
	// rule's default
	SeverityOverrides map[string]string `json:"severity_overrides" mapstructure:"severity_overrides" yaml:"severity_overrides"`

	// SyntaxErrorSeverity is the severity of the synthetic issue recorded
	// for files that fail to parse
	SyntaxErrorSeverity string `json:"syntax_error_severity" mapstructure:"syntax_error_severity" yaml:"syntax_error_severity"`

	// MaxFunctionStatements is the long-function statement ceiling
	MaxFunctionStatements int `json:"max_function_statements" mapstructure:"max_function_statements" yaml:"max_function_statements"`

	// MaxParameters is the parameter-count ceiling
	MaxParameters int `json:"max_parameters" mapstructure:"max_parameters" yaml:"max_parameters"`

	// MaxNestingDepth is the nesting-depth ceiling
	MaxNestingDepth int `json:"max_nesting_depth" mapstructure:"max_nesting_depth" yaml:"max_nesting_depth"`

	// MagicStringRepeats is the repeated-literal tolerance
	MagicStringRepeats int `json:"magic_string_repeats" mapstructure:"magic_string_repeats" yaml:"magic_string_repeats"`
}

// AnalysisConfig holds file selection and scan limits
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// MaxFiles caps how many candidates are analyzed per run
	MaxFiles int `json:"max_files" mapstructure:"max_files" yaml:"max_files"`

	// MaxFileSizeBytes skips files larger than this
	MaxFileSizeBytes int64 `json:"max_file_size_bytes" mapstructure:"max_file_size_bytes" yaml:"max_file_size_bytes"`

	// RespectGitignore skips files ignored by .gitignore
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// Workers bounds the analysis worker pool; 0 means one per CPU
	Workers int `json:"workers" mapstructure:"workers" yaml:"workers"`
}

// OutputConfig holds configuration for report rendering
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, markdown, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails controls whether per-function metrics are rendered
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`

	// Directory is where export writes report files
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// AIConfig holds the AI review collaborator settings
type AIConfig struct {
	// Enabled controls whether review requests are sent at all
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// BaseURL is the chat-completions endpoint root
	BaseURL string `json:"base_url" mapstructure:"base_url" yaml:"base_url"`

	// Model names the model requested from the service
	Model string `json:"model" mapstructure:"model" yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `json:"api_key_env" mapstructure:"api_key_env" yaml:"api_key_env"`

	// TimeoutSeconds bounds one review round trip
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// MaxFilesPerReview caps how many files one review run sends out
	MaxFilesPerReview int `json:"max_files_per_review" mapstructure:"max_files_per_review" yaml:"max_files_per_review"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Enabled:               []string{},
			SeverityOverrides:     map[string]string{},
			SyntaxErrorSeverity:   "critical",
			MaxFunctionStatements: DefaultMaxFunctionStatements,
			MaxParameters:         DefaultMaxParameters,
			MaxNestingDepth:       DefaultMaxNestingDepth,
			MagicStringRepeats:    DefaultMagicStringRepeats,
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{
				"*.py", "*.js", "*.jsx", "*.ts", "*.tsx", "*.mjs", "*.cjs",
			},
			ExcludePatterns: []string{
				// Package managers and virtual environments
				"node_modules",
				"venv",
				".venv",
				"site-packages",
				"__pycache__",
				// Build outputs
				"dist",
				"build",
				// Version control
				".git",
				// Minified and bundled files
				"*.min.js",
				"*.bundle.js",
			},
			MaxFiles:         DefaultMaxFiles,
			MaxFileSizeBytes: DefaultMaxFileSizeBytes,
			RespectGitignore: true,
			Workers:          0,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
			Directory:   "",
		},
		AI: AIConfig{
			Enabled:           true,
			BaseURL:           DefaultAIBaseURL,
			Model:             DefaultAIModel,
			APIKeyEnv:         DefaultAIAPIKeyEnv,
			TimeoutSeconds:    DefaultAITimeoutSeconds,
			MaxFilesPerReview: DefaultAIMaxFilesPerReview,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// When configPath is empty the config file is discovered by searching
// upward from targetPath, then standard locations.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file. RRSCAN_*
// environment variables override file values.
func loadConfigFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.AutomaticEnv()

	config := DefaultConfig()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to read config file %s", configPath), err)
		}
		if err := v.Unmarshal(config); err != nil {
			return nil, domain.NewConfigError("failed to unmarshal config", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for configuration files in common locations,
// searching upward from the analyzed path first
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		constants.ConfigFileName,
		"rrscan.yml",
		".rrscan.yaml",
		".rrscan.yml",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}
				parent := filepath.Dir(dir)
				if parent == dir || dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "rrscan"), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "rrscan"), candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv("RRSCAN_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

var validFormats = map[string]bool{
	constants.OutputFormatText:     true,
	constants.OutputFormatJSON:     true,
	constants.OutputFormatYAML:     true,
	constants.OutputFormatMarkdown: true,
	constants.OutputFormatHTML:     true,
}

// Validate validates the configuration values. Invalid configuration is
// fatal at startup, before any file is analyzed.
func (c *Config) Validate() error {
	for _, id := range c.Rules.Enabled {
		if !rules.IsKnownRuleID(id) {
			return domain.NewConfigError(fmt.Sprintf("unknown rule id %q in rules.enabled", id), nil)
		}
	}
	for id, name := range c.Rules.SeverityOverrides {
		if !rules.IsKnownRuleID(id) {
			return domain.NewConfigError(fmt.Sprintf("unknown rule id %q in rules.severity_overrides", id), nil)
		}
		if _, err := domain.ParseSeverity(name); err != nil {
			return domain.NewConfigError(fmt.Sprintf("invalid severity %q for rule %q", name, id), nil)
		}
	}
	if _, err := domain.ParseSeverity(c.Rules.SyntaxErrorSeverity); err != nil {
		return domain.NewConfigError(fmt.Sprintf("invalid rules.syntax_error_severity %q", c.Rules.SyntaxErrorSeverity), nil)
	}

	if c.Rules.MaxFunctionStatements < 1 {
		return domain.NewConfigError(fmt.Sprintf("rules.max_function_statements must be >= 1, got %d", c.Rules.MaxFunctionStatements), nil)
	}
	if c.Rules.MaxParameters < 1 {
		return domain.NewConfigError(fmt.Sprintf("rules.max_parameters must be >= 1, got %d", c.Rules.MaxParameters), nil)
	}
	if c.Rules.MaxNestingDepth < 1 {
		return domain.NewConfigError(fmt.Sprintf("rules.max_nesting_depth must be >= 1, got %d", c.Rules.MaxNestingDepth), nil)
	}
	if c.Rules.MagicStringRepeats < 1 {
		return domain.NewConfigError(fmt.Sprintf("rules.magic_string_repeats must be >= 1, got %d", c.Rules.MagicStringRepeats), nil)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return domain.NewConfigError("analysis.include_patterns cannot be empty", nil)
	}
	for _, pattern := range append(append([]string{}, c.Analysis.IncludePatterns...), c.Analysis.ExcludePatterns...) {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return domain.NewConfigError(fmt.Sprintf("invalid glob pattern %q", pattern), err)
		}
	}
	if c.Analysis.MaxFiles < 1 {
		return domain.NewConfigError(fmt.Sprintf("analysis.max_files must be >= 1, got %d", c.Analysis.MaxFiles), nil)
	}
	if c.Analysis.MaxFileSizeBytes < 1 {
		return domain.NewConfigError(fmt.Sprintf("analysis.max_file_size_bytes must be >= 1, got %d", c.Analysis.MaxFileSizeBytes), nil)
	}
	if c.Analysis.Workers < 0 {
		return domain.NewConfigError(fmt.Sprintf("analysis.workers must be >= 0, got %d", c.Analysis.Workers), nil)
	}

	if !validFormats[c.Output.Format] {
		return domain.NewConfigError(fmt.Sprintf("invalid output.format %q, must be one of: text, json, yaml, markdown, html", c.Output.Format), nil)
	}

	if c.AI.Enabled {
		if c.AI.BaseURL == "" {
			return domain.NewConfigError("ai.base_url cannot be empty when ai.enabled is set", nil)
		}
		if c.AI.TimeoutSeconds < 1 {
			return domain.NewConfigError(fmt.Sprintf("ai.timeout_seconds must be >= 1, got %d", c.AI.TimeoutSeconds), nil)
		}
		if c.AI.MaxFilesPerReview < 1 {
			return domain.NewConfigError(fmt.Sprintf("ai.max_files_per_review must be >= 1, got %d", c.AI.MaxFilesPerReview), nil)
		}
	}

	return nil
}

// Thresholds converts the rule tuning values for the rule engine
func (c *RulesConfig) Thresholds() rules.Thresholds {
	return rules.Thresholds{
		MaxFunctionStatements: c.MaxFunctionStatements,
		MaxParameters:         c.MaxParameters,
		MaxNestingDepth:       c.MaxNestingDepth,
		MagicStringRepeats:    c.MagicStringRepeats,
	}
}

// SeverityMap resolves the override names into severity values. Validate
// must have accepted the config first.
func (c *RulesConfig) SeverityMap() map[string]domain.Severity {
	overrides := make(map[string]domain.Severity, len(c.SeverityOverrides))
	for id, name := range c.SeverityOverrides {
		if sev, err := domain.ParseSeverity(name); err == nil {
			overrides[id] = sev
		}
	}
	return overrides
}

// SyntaxSeverity returns the severity for synthetic parse-failure issues
func (c *RulesConfig) SyntaxSeverity() domain.Severity {
	if sev, err := domain.ParseSeverity(c.SyntaxErrorSeverity); err == nil {
		return sev
	}
	return domain.SeverityCritical
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("rules", config.Rules)
	v.Set("analysis", config.Analysis)
	v.Set("output", config.Output)
	v.Set("ai", config.AI)

	return v.WriteConfig()
}
