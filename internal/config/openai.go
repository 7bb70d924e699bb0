package config

// GetOpenAIKey returns the OpenAI API credential. An empty value means the
// service is unconfigured; callers decide whether that is fatal.
func GetOpenAIKey() string {
	return GetEnvOrDefault("OPENAI_API_KEY", "")
}
