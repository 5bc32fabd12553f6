package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "ottobrew",
	Short:         "A step-by-step coffee brewing companion",
	Long:          `Ottobrew keeps a library of brewing recipes and walks you through them with a pausable countdown.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to load if present")
	rootCmd.PersistentFlags().String("log-level", "", "off, normal or verbose (overrides config)")
	rootCmd.PersistentFlags().String("log-file", "stderr", "file to write logs to (use \"stderr\" to log to console)")
}
