package llm

import (
	"testing"

	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/llm/anthropic"
	"github.com/nominalab/labor-costs/internal/llm/openai"
)

func TestNewCompleterSelectsProvider(t *testing.T) {
	// The configured key travels into the client constructor; it must not
	// depend on ANTHROPIC_API_KEY being set in the environment.
	c, err := NewCompleter(common.LLMConfig{
		Provider:        "anthropic",
		AnthropicAPIKey: "configured-key",
	}, nil)
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if _, ok := c.(*anthropic.Client); !ok {
		t.Errorf("provider anthropic built %T", c)
	}

	c, err = NewCompleter(common.LLMConfig{Provider: "openai", APIKey: "configured-key"}, nil)
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*openai.Client); !ok {
		t.Errorf("provider openai built %T", c)
	}

	if _, err := NewCompleter(common.LLMConfig{Provider: "bard"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
