package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "itch-go",
		Short: "itch-go decodes NASDAQ TotalView-ITCH market-data feeds",
		Long:  "itch-go decodes NASDAQ TotalView-ITCH market-data feeds (versions 4.1 and 5.0)",
	}
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newSnapshotCmd())
	return cmd
}
