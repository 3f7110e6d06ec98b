package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id...]",
		Short: "Remove items from the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			cat, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			deleted, err := cat.DeleteItems(cmd.Context(), ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(deleted) == 0 {
				fmt.Fprintln(out, "No items removed.")
				return nil
			}
			for _, id := range deleted {
				fmt.Fprintf(out, "Removed item %d\n", id)
			}
			return nil
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
