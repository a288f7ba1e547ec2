package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rwalling/tasklog/internal/database"
	"github.com/rwalling/tasklog/internal/models"
)

// NewBackupCmd creates the backup command with export and import subcommands
func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import the full todo and history tables",
	}
	cmd.AddCommand(newBackupExportCmd())
	cmd.AddCommand(newBackupImportCmd())
	return cmd
}

func newBackupExportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all todos and history to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewTransferRepository(db)
			backup, err := repo.Export(context.Background())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			data, err := json.MarshalIndent(backup, "", "  ")
			if err != nil {
				return fmt.Errorf("encode backup: %w", err)
			}
			if err := os.WriteFile(file, data, 0o600); err != nil {
				return fmt.Errorf("write backup file: %w", err)
			}
			fmt.Printf("Exported %d todos and %d history entries to %s\n", len(backup.Todos), len(backup.History), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Output file path (required)")
	return cmd
}

func newBackupImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all todos and history with the contents of a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read backup file: %w", err)
			}
			var backup models.Backup
			if err := json.Unmarshal(data, &backup); err != nil {
				return fmt.Errorf("decode backup: %w", err)
			}
			if backup.Todos == nil || backup.History == nil {
				return fmt.Errorf("backup must contain todos and history arrays")
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewTransferRepository(db)
			count, err := repo.Import(context.Background(), backup.Todos, backup.History)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Printf("Imported %d todos from %s\n", count, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Input file path (required)")
	return cmd
}
