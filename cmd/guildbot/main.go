package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "guildbot",
		Short:   "Community AI responder with budgeted completions",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newBudgetCmd(),
		newUsageCmd(),
		newCostCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
