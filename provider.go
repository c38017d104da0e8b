package convo

// Provider identifies a model backend. Values match the prefix of a
// "provider/model" identifier.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderOpenAI       Provider = "openai"
	ProviderAnthropic    Provider = "anthropic"
	ProviderGemini       Provider = "gemini"
	ProviderVertex       Provider = "vertex_ai"
	ProviderOllama       Provider = "ollama"
	ProviderLiteLLMProxy Provider = "litellm_proxy"
)

// OpenAICompatible reports whether the provider speaks the OpenAI chat
// completions protocol.
func (p Provider) OpenAICompatible() bool {
	switch p {
	case ProviderOpenAI, ProviderOllama, ProviderLiteLLMProxy:
		return true
	}
	return false
}
