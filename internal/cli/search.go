package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var idsOnly bool

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the catalog by title or path",
		Long:  `Search for items whose title or path contains term, ignoring case. Without a term every item is listed. Results are newest first.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			cat, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			ids, err := cat.SearchItems(cmd.Context(), term)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if idsOnly {
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			if len(ids) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}

			items, err := cat.GetItemDetails(cmd.Context(), ids)
			if err != nil {
				return err
			}
			byID := make(map[int64]int, len(items))
			for i, item := range items {
				byID[item.ID] = i
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tEXT\tADDED\tPATH")
			for _, id := range ids {
				i, ok := byID[id]
				if !ok {
					continue
				}
				item := items[i]
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					item.ID, item.Title, item.Extension, item.Added.Format("2006-01-02 15:04"), item.Path)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print only matching ids, one per line")
	return cmd
}
