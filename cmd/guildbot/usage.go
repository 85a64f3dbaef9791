package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/guildbot-ai/guildbot/pkg/config"
	"github.com/guildbot-ai/guildbot/pkg/usagelog"
)

func newUsageCmd() *cobra.Command {
	var (
		configPath string
		userID     string
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show per-user token usage from the usage history",
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

			summaries, err := store.Summary(context.Background(), userID)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tMODEL\tREQUESTS\tPROMPT\tCOMPLETION\tTOTAL\tCOST")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t$%.4f\n",
					s.UserID, s.Model, s.RequestCount, s.TotalPrompt, s.TotalCompletion, s.TotalTokens, s.CostUSD)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "guildbot.yaml", "path to config file")
	cmd.Flags().StringVar(&userID, "user", "", "filter by user id")
	return cmd
}
