package llm

import "fmt"

// ProviderConfig is the provider-agnostic model configuration the factory
// consumes. The zero value selects a local Ollama instance.
type ProviderConfig struct {
	Provider       string // "ollama", "openai", or "anthropic"
	APIKey         string
	Model          string
	EmbeddingModel string
	BaseURL        string
}

// NewTextGenerator creates the TextGenerator for the configured provider.
func NewTextGenerator(cfg ProviderConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}), nil
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}), nil
	case "ollama", "":
		return NewOllamaClient(OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// NewEmbeddingGenerator creates the EmbeddingGenerator for the configured
// provider. Returns (nil, nil) for providers without an embeddings API
// (Anthropic); callers treat a nil generator as "embeddings disabled".
func NewEmbeddingGenerator(cfg ProviderConfig) (EmbeddingGenerator, error) {
	switch cfg.Provider {
	case "openai":
		model := cfg.EmbeddingModel
		if model == "" {
			model = "text-embedding-3-small"
		}
		return NewOpenAIEmbeddingClient(OpenAIEmbeddingConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL}), nil
	case "ollama", "":
		model := cfg.EmbeddingModel
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaClient(OllamaConfig{BaseURL: cfg.BaseURL, Model: model}), nil
	default:
		return nil, nil
	}
}
