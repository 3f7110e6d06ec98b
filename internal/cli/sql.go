package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSQLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sql [statement]",
		Short: "Run a SQL statement against the catalog",
		Long: `Run a single SQL statement. Arguments are joined with spaces. Reads print the
result rows as JSON; other statements print the number of affected rows. Statements
containing DROP TABLE or ALTER TABLE are refused.`,
		Example: `  mediacat sql "SELECT extension, COUNT(*) AS n FROM items GROUP BY extension"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			rows, err := cat.ExecuteRawQuery(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
}
