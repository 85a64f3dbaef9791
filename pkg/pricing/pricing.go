package pricing

import (
	"log/slog"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

const tokensPerUnit = 1e6

// Calculator converts token usage into a USD cost using per-model rate
// tables. Rates are operator-edited configuration, read-only at runtime.
type Calculator struct {
	rates        map[string]models.ModelPricing
	defaultRates models.ModelPricing
	log          *slog.Logger
}

// New creates a Calculator. Models absent from the table fall back to
// defaultRates.
func New(table []models.ModelPricing, defaultRates models.ModelPricing, log *slog.Logger) *Calculator {
	rates := make(map[string]models.ModelPricing, len(table))
	for _, p := range table {
		rates[p.Model] = p
	}
	if log == nil {
		log = slog.Default()
	}
	return &Calculator{rates: rates, defaultRates: defaultRates, log: log}
}

// Cost returns the USD cost of a call. When the prompt/completion split is
// available it is priced exactly. When only a total is reported, the total
// is charged at the summed rate: an overcharge relative to the true split,
// never an undercount. No usage at all prices as zero; that is degraded
// accounting, not an error, and is logged so operators can spot billing gaps.
func (c *Calculator) Cost(model string, usage models.Usage) float64 {
	rates, ok := c.rates[model]
	if !ok {
		rates = c.defaultRates
	}

	switch {
	case usage.Zero():
		c.log.Warn("no usage reported, call priced at zero", "model", model)
		return 0
	case usage.PromptTokens > 0 || usage.CompletionTokens > 0:
		return float64(usage.PromptTokens)/tokensPerUnit*rates.InputPerMTok +
			float64(usage.CompletionTokens)/tokensPerUnit*rates.OutputPerMTok
	default:
		return float64(usage.TotalTokens) / tokensPerUnit * (rates.InputPerMTok + rates.OutputPerMTok)
	}
}
