package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/guildbot-ai/guildbot/pkg/config"
	"github.com/guildbot-ai/guildbot/pkg/ledger"
)

func newBudgetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect budget usage vs limits",
	}

	var day string
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show spend against the daily budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			led, err := ledger.Open(cfg.Budget.LedgerPath)
			if err != nil {
				return err
			}

			key := day
			if key == "" {
				key = ledger.Today()
			}
			entry := led.Entry(key)

			remaining := cfg.Budget.DailyUSD - entry.TotalUSD
			if remaining < 0 {
				remaining = 0
			}
			fmt.Printf("Day %s: $%.4f spent of $%.2f ($%.4f remaining)\n",
				key, entry.TotalUSD, cfg.Budget.DailyUSD, remaining)

			if len(entry.Users) == 0 {
				fmt.Println("No per-user spend recorded.")
				return nil
			}

			users := make([]string, 0, len(entry.Users))
			for id := range entry.Users {
				users = append(users, id)
			}
			sort.Strings(users)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tSPENT")
			for _, id := range users {
				fmt.Fprintf(w, "%s\t$%.4f\n", id, entry.Users[id])
			}
			return w.Flush()
		},
	}
	statusCmd.Flags().StringVar(&day, "day", "", "UTC day to inspect (YYYY-MM-DD, default today)")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "guildbot.yaml", "path to config file")
	cmd.AddCommand(statusCmd)
	return cmd
}
