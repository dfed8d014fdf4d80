package domain

// Metric name constants
const (
	MetricCyclomaticComplexity = "cyclomatic_complexity"
	MetricParameterCount       = "parameter_count"
	MetricNestingDepth         = "nesting_depth"
	MetricLinesOfCode          = "lines_of_code"
	MetricCommentRatio         = "comment_ratio"
	MetricMaintainabilityIndex = "maintainability_index"
	MetricFunctionCount        = "function_count"
	MetricClassCount           = "class_count"
	MetricImportCount          = "import_count"
)

// Metric is a named numeric measurement scoped to a file or to a function
// within a file. Function is empty for file-level metrics. Values are
// always non-negative.
type Metric struct {
	Name     string  `json:"name" yaml:"name"`
	FilePath string  `json:"file_path" yaml:"file_path"`
	Function string  `json:"function,omitempty" yaml:"function,omitempty"`
	Value    float64 `json:"value" yaml:"value"`
}
