package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/guildbot-ai/guildbot/pkg/config"
	"github.com/guildbot-ai/guildbot/pkg/usagelog"
)

func newCostCmd() *cobra.Command {
	var (
		configPath string
		since      string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show estimated costs by model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.UsageLog.Enabled {
				fmt.Println("Usage history is disabled (usage_log.enabled: false).")
				return nil
			}

			store, err := usagelog.Open(cfg.UsageLog.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sinceTime := beginningOfMonth()
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				sinceTime = t
			}

			costs, err := store.CostByModel(context.Background(), sinceTime)
			if err != nil {
				return err
			}
			if len(costs) == 0 {
				fmt.Println("No cost data found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tREQUESTS\tTOKENS\tCOST")
			var total float64
			for _, c := range costs {
				fmt.Fprintf(w, "%s\t%d\t%d\t$%.4f\n", c.Model, c.RequestCount, c.TotalTokens, c.CostUSD)
				total += c.CostUSD
			}
			fmt.Fprintf(w, "TOTAL\t\t\t$%.4f\n", total)
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guildbot.yaml", "path to config file")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD, default: start of month)")
	return cmd
}

func beginningOfMonth() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
