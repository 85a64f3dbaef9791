package config

import (
	"fmt"
	"os"

	"github.com/guildbot-ai/guildbot/pkg/models"
	"gopkg.in/yaml.v3"
)

// Config holds all guildbot configuration.
type Config struct {
	Log       LogConfig        `yaml:"log"`
	Discord   DiscordConfig    `yaml:"discord"`
	AI        AIConfig         `yaml:"ai"`
	Providers []ProviderConfig `yaml:"providers"`
	Budget    BudgetConfig     `yaml:"budget"`
	Pricing   PricingConfig    `yaml:"pricing"`
	UsageLog  UsageLogConfig   `yaml:"usage_log"`
	Replies   RepliesConfig    `yaml:"replies"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DiscordConfig defines the chat platform connection and the privileged role
// used for placeholder substitution.
type DiscordConfig struct {
	Token              string `yaml:"token"`
	MentionRoleID      string `yaml:"mention_role_id"`
	MentionPlaceholder string `yaml:"mention_placeholder"`
}

// AIConfig controls prompt construction and the completion cycle.
type AIConfig struct {
	SystemPrompt        string `yaml:"system_prompt"`
	Model               string `yaml:"model"`
	SummaryModel        string `yaml:"summary_model"`
	MemoryTurns         int    `yaml:"memory_turns"`
	MaxCompletionTokens int    `yaml:"max_completion_tokens"`
	MaxContinuations    int    `yaml:"max_continuations"`
	ContinuePrompt      string `yaml:"continue_prompt"`
	RequestTimeoutSecs  int    `yaml:"request_timeout_seconds"`
}

// ProviderConfig defines an upstream LLM provider.
// Type is "openai" (default) or "anthropic".
type ProviderConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Type   string `yaml:"type"`
}

// BudgetConfig controls budget enforcement. RoleLimits is precedence-ordered:
// the first entry whose role the requester holds wins.
type BudgetConfig struct {
	DailyUSD        float64            `yaml:"daily_usd"`
	DefaultDailyUSD float64            `yaml:"default_daily_usd"`
	RoleLimits      []models.RoleLimit `yaml:"role_limits"`
	LedgerPath      string             `yaml:"ledger_path"`
}

// PricingConfig maps model names to per-million-token rates. Default applies
// to any model not listed.
type PricingConfig struct {
	Default models.ModelPricing   `yaml:"default"`
	Models  []models.ModelPricing `yaml:"models"`
}

// UsageLogConfig controls the optional per-call usage history store.
type UsageLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// RepliesConfig holds the operator-language user-facing reply strings.
type RepliesConfig struct {
	BudgetExhausted  string `yaml:"budget_exhausted"`
	UserLimitReached string `yaml:"user_limit_reached"`
	ContentRejected  string `yaml:"content_rejected"`
	EmptyResponse    string `yaml:"empty_response"`
	Failure          string `yaml:"failure"`
	Truncated        string `yaml:"truncated"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Discord: DiscordConfig{
			MentionPlaceholder: "[TRUSTEE]",
		},
		AI: AIConfig{
			Model:               "o4-mini",
			MemoryTurns:         10,
			MaxCompletionTokens: 1024,
			MaxContinuations:    3,
			ContinuePrompt:      "Continue.",
			RequestTimeoutSecs:  90,
		},
		Budget: BudgetConfig{
			DailyUSD:        5,
			DefaultDailyUSD: 0.5,
			LedgerPath:      "cost-ledger.json",
		},
		Pricing: PricingConfig{
			Default: models.ModelPricing{InputPerMTok: 1.1, OutputPerMTok: 4.4},
		},
		UsageLog: UsageLogConfig{
			Enabled: false,
			DBPath:  "guildbot.db",
		},
		Replies: RepliesConfig{
			BudgetExhausted:  "The daily AI budget is exhausted. Try again tomorrow.",
			UserLimitReached: "You have used up your daily AI limit.",
			ContentRejected:  "Sorry, your request violates the safety policy.",
			EmptyResponse:    "Sorry, I did not receive an answer from the AI. Please try again.",
			Failure:          "An error occurred while generating the AI response.",
			Truncated:        "(The reply was cut short at the length limit.)",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AI.MemoryTurns <= 0 {
		return fmt.Errorf("config: ai.memory_turns must be positive")
	}
	if c.AI.MaxCompletionTokens <= 0 {
		return fmt.Errorf("config: ai.max_completion_tokens must be positive")
	}
	if c.Budget.DailyUSD <= 0 {
		return fmt.Errorf("config: budget.daily_usd must be positive")
	}
	return nil
}
