package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add [path...]",
		Short: "Add media files to the catalog",
		Long: `Add one or more file paths to the catalog. Pass "-" to read paths from stdin,
one per line. Paths are cleaned but not checked on disk. The result lists the ids that
were added, the paths that were already present and the paths that failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(args) == 1 && args[0] == "-" {
				var err error
				paths, err = readPaths(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read paths: %w", err)
				}
			}

			cat, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			result, err := cat.AddItems(cmd.Context(), paths)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

// readPaths returns the non-blank lines of r
func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, scanner.Err()
}
