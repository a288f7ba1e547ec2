package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rwalling/tasklog/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tasklog-configure",
		Short: "Configuration tool for the Tasklog API",
		Long:  "CLI tool for running migrations and configuring OIDC providers, rate limits and backups",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewOIDCCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewBackupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
