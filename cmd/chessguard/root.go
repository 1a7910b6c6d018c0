package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chessguard",
		Short:         "Statistical chess cheat detection",
		Long:          "chessguard analyzes chess games for statistical signs of engine assistance:\nengine agreement, move timing anomalies and improbable winning streaks.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(serveCmd(), analyzeCmd())
	return cmd
}
