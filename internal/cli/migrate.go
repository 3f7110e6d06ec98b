package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/mediacat-mcp/internal/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations, or roll back the newest one",
		Long: `Opening the catalog always applies pending migrations; migrate does that and
reports the resulting schema version. With --rollback the most recently applied
migration is reverted. Rolling back the first migration drops all catalog tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := storage.NewSQLiteStorage(ctx, a.storageOptions())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if rollback {
				version, err := storage.RollbackMigration(ctx, store.DB())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Rolled back migration %s\n", version)
			}

			current, err := storage.SchemaVersion(ctx, store.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema version: %s\n", current)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "revert the most recently applied migration")
	return cmd
}
