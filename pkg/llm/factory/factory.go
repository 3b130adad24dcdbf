package factory

import (
	"ai-caresupervisor-be/pkg/llm"
	"ai-caresupervisor-be/pkg/llm/huggingface"
	"ai-caresupervisor-be/pkg/llm/ollama"
	"fmt"
)

// NewProvider builds a model backend by name. The supervisor constructs two
// of these (primary and secondary) so that cross-validation can run against
// independent vendors.
func NewProvider(providerType, modelName, ollamaBaseURL, hfAPIKey, hfBaseURL string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(hfAPIKey, hfBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
