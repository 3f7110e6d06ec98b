package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/dshills/mediacat-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying catalog items
type Storage interface {
	// Item operations
	SearchItemIDs(ctx context.Context, term string) ([]int64, error)
	GetItemsByIDs(ctx context.Context, ids []int64) ([]types.Item, error)
	ExistingPaths(ctx context.Context, paths []string) (map[string]struct{}, error)
	InsertItem(ctx context.Context, item *types.Item) (int64, error)
	DeleteItems(ctx context.Context, ids []int64) ([]int64, error)

	// Raw statement execution
	QueryRaw(ctx context.Context, statement string, scan func(*sql.Rows) error) error
	ExecRaw(ctx context.Context, statement string) (rowsAffected int64, err error)

	// Status operations
	GetStats(ctx context.Context) (*Stats, error)

	// Database operations
	Ping(ctx context.Context) error
	Close() error
}

// Options configures NewSQLiteStorage
type Options struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  time.Duration
}

// DefaultOptions returns pool settings suitable for a single-user catalog.
func DefaultOptions(path string) Options {
	return Options{
		Path:         path,
		MaxOpenConns: 4,
		MaxIdleConns: 4,
		BusyTimeout:  5 * time.Second,
	}
}

// Stats summarizes the catalog database
type Stats struct {
	Items         int64  `json:"items"`
	Tags          int64  `json:"tags"`
	TagCategories int64  `json:"tagCategories"`
	SchemaVersion string `json:"schemaVersion"`
	SizeBytes     int64  `json:"sizeBytes"`
	WALSizeBytes  int64  `json:"walSizeBytes"`
	OpenConns     int    `json:"openConns"`
	BuildMode     string `json:"buildMode"`
}
