package llm

import (
	"fmt"
	"log/slog"

	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/llm/anthropic"
	"github.com/nominalab/labor-costs/internal/llm/openai"
)

// NewCompleter builds the configured completion client.
func NewCompleter(cfg common.LLMConfig, logger *slog.Logger) (Completer, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, logger), nil
	case "openai", "":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
