package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:          "linkcomment",
		Short:        "Operator tools for the linkcomment API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newTokenCmd(cfg))
	rootCmd.AddCommand(newWhoamiCmd(cfg))
	rootCmd.AddCommand(newExportCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
