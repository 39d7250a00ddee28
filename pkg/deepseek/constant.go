package deepseek

import "time"

const (
	// DefaultModel is the default DeepSeek model
	DefaultModel = "deepseek-chat"

	// DefaultBaseURL is the default DeepSeek API endpoint
	DefaultBaseURL = "https://api.deepseek.com/v1"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 60 * time.Second
)
