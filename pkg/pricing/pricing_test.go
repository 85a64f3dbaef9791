package pricing

import (
	"testing"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

func newTestCalculator() *Calculator {
	table := []models.ModelPricing{
		{Model: "o4-mini", InputPerMTok: 1, OutputPerMTok: 2},
	}
	return New(table, models.ModelPricing{InputPerMTok: 5, OutputPerMTok: 10}, nil)
}

func TestCostExactSplit(t *testing.T) {
	c := newTestCalculator()

	cost := c.Cost("o4-mini", models.Usage{
		PromptTokens:     1_000_000,
		CompletionTokens: 1_000_000,
		TotalTokens:      2_000_000,
	})
	if cost != 3 {
		t.Errorf("expected cost 3, got %v", cost)
	}
}

func TestCostTotalOnly(t *testing.T) {
	c := newTestCalculator()

	// Only a total: charged at the summed rate, a documented overcharge.
	cost := c.Cost("o4-mini", models.Usage{TotalTokens: 2_000_000})
	if cost != 6 {
		t.Errorf("expected cost 6, got %v", cost)
	}
}

func TestCostNoUsage(t *testing.T) {
	c := newTestCalculator()

	if cost := c.Cost("o4-mini", models.Usage{}); cost != 0 {
		t.Errorf("expected zero cost for missing usage, got %v", cost)
	}
}

func TestCostUnknownModelUsesDefault(t *testing.T) {
	c := newTestCalculator()

	cost := c.Cost("unlisted-model", models.Usage{
		PromptTokens:     1_000_000,
		CompletionTokens: 1_000_000,
	})
	if cost != 15 {
		t.Errorf("expected default-rate cost 15, got %v", cost)
	}
}
