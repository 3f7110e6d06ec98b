package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/mediacat-mcp/internal/catalog"
	"github.com/dshills/mediacat-mcp/internal/config"
	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/storage"
)

// Version is set at build time via -ldflags "-X github.com/dshills/mediacat-mcp/internal/cli.Version=1.2.3".
var Version = "dev"

// BuildTime is set at build time alongside Version.
var BuildTime = "unknown"

// app carries the resolved configuration shared by every subcommand
type app struct {
	dataDir  string
	dbPath   string
	logLevel string

	config *config.Config
}

// NewRootCommand builds the mediacat command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "mediacat",
		Short: "mediacat - a local media catalog with an MCP interface",
		Long: `mediacat keeps a catalog of media files in a local SQLite database. Add, search,
inspect and remove items from the command line, or serve the catalog to MCP clients over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default $MEDIACAT_DATA_DIR or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides database.path)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newSearchCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newSQLCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load resolves the data directory, env file and config, then applies flag
// overrides and configures logging.
func (a *app) load() error {
	dataDir := a.dataDir
	if dataDir == "" {
		dataDir = config.GetDataDir()
	}

	if err := config.LoadEnvFile(".env", filepath.Join(dataDir, ".env")); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	a.config = cfg
	return nil
}

func (a *app) storageOptions() storage.Options {
	db := a.config.Database
	return storage.Options{
		Path:         db.Path,
		MaxOpenConns: db.MaxOpenConns,
		MaxIdleConns: db.MaxIdleConns,
		BusyTimeout:  time.Duration(db.BusyTimeoutMS) * time.Millisecond,
	}
}

func (a *app) openCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return catalog.Open(ctx, a.storageOptions(),
		catalog.WithDenylist(a.config.Gateway.Denylist...),
	)
}

// printJSON writes v as indented JSON followed by a newline
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
