package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rwalling/tasklog/internal/config"
	"github.com/rwalling/tasklog/internal/database"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Create or update the todos, history and configuration tables. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			if err := db.Migrate(context.Background()); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Println("Schema applied.")
			return nil
		},
	}
}

// openDatabase loads configuration and connects to the database
func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *database.DB) {
	_ = db.Close()
}
