package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "rrscan"

	// ConfigFileName is the default config file name
	ConfigFileName = "rrscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "RRSCAN"
)

// Output format constants
const (
	OutputFormatText     = "text"
	OutputFormatJSON     = "json"
	OutputFormatYAML     = "yaml"
	OutputFormatMarkdown = "markdown"
	OutputFormatHTML     = "html"
)

// Exit codes
const (
	// ExitOK means the run completed, whether or not issues were found
	ExitOK = 0

	// ExitFatal means a configuration or root-path failure aborted the run
	ExitFatal = 1
)
