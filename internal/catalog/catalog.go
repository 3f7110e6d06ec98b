package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/dshills/mediacat-mcp/internal/gateway"
	"github.com/dshills/mediacat-mcp/internal/indexer"
	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/searcher"
	"github.com/dshills/mediacat-mcp/internal/storage"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

var log = logger.WithName("catalog")

// Option is a functional option for New.
type Option func(*Catalog)

// WithDenylist adds phrases to the raw query guard on top of the defaults.
func WithDenylist(phrases ...string) Option {
	return func(c *Catalog) { c.denylist = append(c.denylist, phrases...) }
}

// WithSearcherConfig overrides how detail lookups are chunked.
func WithSearcherConfig(cfg *searcher.Config) Option {
	return func(c *Catalog) { c.searcherConfig = cfg }
}

// Catalog is the single entry point the MCP server and the CLI use to reach
// the media catalog.
type Catalog struct {
	storage  storage.Storage
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	gateway  *gateway.Gateway

	denylist       []string
	searcherConfig *searcher.Config
}

// New wires the catalog engines over store. The catalog takes ownership of
// store; Close releases it.
func New(store storage.Storage, opts ...Option) *Catalog {
	c := &Catalog{storage: store}
	for _, o := range opts {
		o(c)
	}

	c.indexer = indexer.New(store)
	c.searcher = searcher.NewSearcherWithConfig(store, c.searcherConfig)
	c.gateway = gateway.New(store, c.denylist...)
	return c
}

// Open opens the SQLite store described by opts and wraps it in a Catalog.
func Open(ctx context.Context, opts storage.Options, catalogOpts ...Option) (*Catalog, error) {
	store, err := storage.NewSQLiteStorage(ctx, opts)
	if err != nil {
		return nil, err
	}
	return New(store, catalogOpts...), nil
}

// AddItems ingests candidate paths; see indexer.Indexer.AddItems.
func (c *Catalog) AddItems(ctx context.Context, paths []string) (*types.AddItemsResult, error) {
	return c.indexer.AddItems(ctx, paths)
}

// DeleteItems removes the given ids and returns, ascending, the ids that
// were actually removed. Unknown ids are ignored.
func (c *Catalog) DeleteItems(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	removed, err := c.storage.DeleteItems(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("delete failed: %w", err)
	}
	log.WithField("removed", len(removed)).Debug("deleted items")
	return removed, nil
}

// SearchItems returns ids of items whose title or path contains term,
// newest first. An empty term lists the whole catalog.
func (c *Catalog) SearchItems(ctx context.Context, term string) ([]int64, error) {
	return c.searcher.Search(ctx, term)
}

// GetItemDetails returns the items for ids, ascending by id. Unknown ids are
// omitted and duplicates collapse.
func (c *Catalog) GetItemDetails(ctx context.Context, ids []int64) ([]types.Item, error) {
	return c.searcher.FetchDetails(ctx, ids)
}

// ExecuteRawQuery runs statement through the guarded gateway.
func (c *Catalog) ExecuteRawQuery(ctx context.Context, statement string) ([]*types.Row, error) {
	return c.gateway.Execute(ctx, statement)
}

// Stats reports database statistics.
func (c *Catalog) Stats(ctx context.Context) (*storage.Stats, error) {
	return c.storage.GetStats(ctx)
}

// Ping checks that the store is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.storage.Ping(ctx)
}

// RefreshMetrics updates the store gauges when the backend exports them.
func (c *Catalog) RefreshMetrics(ctx context.Context) {
	if m, ok := c.storage.(interface{ UpdateDBMetrics(context.Context) }); ok {
		m.UpdateDBMetrics(ctx)
	}
}

// Close releases the underlying store.
func (c *Catalog) Close() error {
	return c.storage.Close()
}
