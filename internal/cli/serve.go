package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/mediacat-mcp/internal/catalog"
	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/mcp"
	"github.com/dshills/mediacat-mcp/internal/metrics"
	"github.com/dshills/mediacat-mcp/internal/storage"
)

const metricsRefreshInterval = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Serve the catalog to MCP clients over stdin/stdout. Logs go to stderr.
With --metrics-addr, Prometheus metrics and a health check are served over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if metricsAddr == "" {
				metricsAddr = a.config.Metrics.Addr
			}
			return a.serve(cmd.Context(), metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for /metrics and /healthz, e.g. 127.0.0.1:9464")
	return cmd
}

func (a *app) serve(parent context.Context, metricsAddr string) error {
	log := logger.WithName("serve")
	mcp.ServerVersion = Version

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cat, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cat)
	if err != nil {
		_ = cat.Close()
		return err
	}

	log.WithField("version", Version).
		WithField("build_mode", storage.BuildMode).
		WithField("driver", storage.DriverName).
		WithField("database", a.config.Database.Path).
		Info("mediacat MCP server starting")

	if metricsAddr != "" {
		httpServer := metrics.NewServer(metricsAddr, cat.Ping)
		go func() {
			log.WithField("addr", metricsAddr).Info("metrics listener started")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics listener failed")
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = httpServer.Shutdown(shutdownCtx)
		}()

		go refreshMetrics(ctx, cat, metricsRefreshInterval)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("shutting down")
		cancel()
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	log.Info("server stopped")
	return nil
}

// refreshMetrics keeps the store gauges current until ctx is done
func refreshMetrics(ctx context.Context, cat *catalog.Catalog, interval time.Duration) {
	cat.RefreshMetrics(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cat.RefreshMetrics(ctx)
		}
	}
}
