package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/guildbot-ai/guildbot/pkg/bot"
	"github.com/guildbot-ai/guildbot/pkg/config"
	"github.com/guildbot-ai/guildbot/pkg/delivery"
	discorddelivery "github.com/guildbot-ai/guildbot/pkg/delivery/discord"
	"github.com/guildbot-ai/guildbot/pkg/gate"
	"github.com/guildbot-ai/guildbot/pkg/ledger"
	"github.com/guildbot-ai/guildbot/pkg/llm"
	"github.com/guildbot-ai/guildbot/pkg/llm/anthropic"
	"github.com/guildbot-ai/guildbot/pkg/llm/openai"
	"github.com/guildbot-ai/guildbot/pkg/memory"
	"github.com/guildbot-ai/guildbot/pkg/orchestrator"
	"github.com/guildbot-ai/guildbot/pkg/pricing"
	"github.com/guildbot-ai/guildbot/pkg/usagelog"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and answer AI mentions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Discord.Token == "" {
				return fmt.Errorf("discord token not configured")
			}
			if len(cfg.Providers) == 0 {
				return fmt.Errorf("no completion providers configured")
			}

			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			led, err := ledger.Open(cfg.Budget.LedgerPath)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}

			var usage orchestrator.UsageRecorder
			if cfg.UsageLog.Enabled {
				store, err := usagelog.Open(cfg.UsageLog.DBPath)
				if err != nil {
					return fmt.Errorf("open usage log: %w", err)
				}
				defer func() { _ = store.Close() }()
				usage = store
			}

			timeout := time.Duration(cfg.AI.RequestTimeoutSecs) * time.Second
			clients := make([]llm.Client, 0, len(cfg.Providers))
			for _, p := range cfg.Providers {
				switch p.Type {
				case "anthropic":
					clients = append(clients, anthropic.New(p.URL, p.APIKey, timeout))
				default:
					clients = append(clients, openai.New(p.URL, p.APIKey, timeout))
				}
			}

			session, err := discordgo.New("Bot " + cfg.Discord.Token)
			if err != nil {
				return fmt.Errorf("create discord session: %w", err)
			}
			session.Identify.Intents = discordgo.IntentsGuilds |
				discordgo.IntentsGuildMessages |
				discordgo.IntentMessageContent

			finalizer := delivery.New(
				cfg.Discord.MentionPlaceholder,
				cfg.Discord.MentionRoleID,
				discorddelivery.NewMessenger(session),
			)

			orch := orchestrator.New(
				orchestrator.Options{
					SystemPrompt:     cfg.AI.SystemPrompt,
					Model:            cfg.AI.Model,
					SummaryModel:     cfg.AI.SummaryModel,
					MaxOutputTokens:  cfg.AI.MaxCompletionTokens,
					MaxContinuations: cfg.AI.MaxContinuations,
					ContinuePrompt:   cfg.AI.ContinuePrompt,
					RequestTimeout:   timeout,
					Replies:          cfg.Replies,
				},
				gate.New(cfg.Budget.DailyUSD, cfg.Budget.DefaultDailyUSD, cfg.Budget.RoleLimits, led),
				memory.New(cfg.AI.MemoryTurns),
				pricing.New(cfg.Pricing.Models, cfg.Pricing.Default, logger),
				led,
				usage,
				llm.NewFailover(clients, logger),
				finalizer,
				logger,
			)

			session.AddHandler(bot.New(orch, logger).HandleMessageCreate)

			if err := session.Open(); err != nil {
				return fmt.Errorf("open discord session: %w", err)
			}
			defer func() { _ = session.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("guildbot connected", "model", cfg.AI.Model, "providers", len(clients))
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guildbot.yaml", "path to config file")
	return cmd
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log.level: %s", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log.format: %s", cfg.Format)
	}
}
