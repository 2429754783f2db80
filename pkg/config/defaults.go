package config

const (
	defaultEndpointURL  = "http://localhost:8000"
	defaultEndpointPath = "/v1/messages"
	defaultAPIKey       = "test-key"
	defaultAPIKeyHeader = "x-api-key"

	defaultModel     = "claude-sonnet-4.5"
	defaultMaxTokens = 2048
	defaultPrompt    = "What is 25 * 47? Show your reasoning step by step."

	defaultBudgetTokens = 1000

	anthropicURL     = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-sonnet-4-5"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Endpoint: EndpointConfig{
			URL:          defaultEndpointURL,
			Path:         defaultEndpointPath,
			APIKey:       defaultAPIKey,
			APIKeyHeader: defaultAPIKeyHeader,
		},
		Request: RequestConfig{
			Model:     defaultModel,
			MaxTokens: defaultMaxTokens,
			Prompt:    defaultPrompt,
		},
		Thinking: ThinkingConfig{
			BudgetTokens: defaultBudgetTokens,
		},
	}
}
