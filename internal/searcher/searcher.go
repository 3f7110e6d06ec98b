package searcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/storage"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

const (
	// DefaultChunkSize is the number of ids bound into a single detail query
	DefaultChunkSize = 500

	// DefaultConcurrency bounds the detail queries in flight for one call
	DefaultConcurrency = 4
)

var log = logger.WithName("searcher")

// Config tunes how detail lookups are split
type Config struct {
	ChunkSize   int
	Concurrency int
}

// DefaultConfig returns the default detail lookup settings
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:   DefaultChunkSize,
		Concurrency: DefaultConcurrency,
	}
}

// Searcher answers catalog search and retrieval queries
type Searcher struct {
	storage storage.Storage
	config  *Config
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage) *Searcher {
	return NewSearcherWithConfig(store, DefaultConfig())
}

// NewSearcherWithConfig creates a Searcher with explicit chunking settings
func NewSearcherWithConfig(store storage.Storage, config *Config) *Searcher {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ChunkSize <= 0 || config.ChunkSize > storage.MaxBindVars {
		config.ChunkSize = DefaultChunkSize
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	return &Searcher{storage: store, config: config}
}

// Search returns the ids of items matching term, newest first. Matching is a
// case-insensitive substring test against title and path; a blank term
// matches every item.
func (s *Searcher) Search(ctx context.Context, term string) ([]int64, error) {
	start := time.Now()

	ids, err := s.storage.SearchItemIDs(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	log.WithField("term", term).
		WithField("results", len(ids)).
		WithField("duration", time.Since(start)).
		Debug("search completed")

	return ids, nil
}

// FetchDetails returns the full records for the distinct ids that exist,
// ascending by id. Unknown ids are skipped. Large requests are split into
// chunks that are fetched concurrently.
func (s *Searcher) FetchDetails(ctx context.Context, ids []int64) ([]types.Item, error) {
	unique := dedupeSorted(ids)
	if len(unique) == 0 {
		return []types.Item{}, nil
	}

	chunks := chunkIDs(unique, s.config.ChunkSize)
	results := make([][]types.Item, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			items, err := s.storage.GetItemsByIDs(gctx, chunk)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch item details: %w", err)
	}

	// Chunks partition an ascending id list, so concatenating in chunk
	// order keeps the result ascending.
	items := make([]types.Item, 0, len(unique))
	for _, r := range results {
		items = append(items, r...)
	}

	log.WithField("requested", len(ids)).
		WithField("found", len(items)).
		WithField("chunks", len(chunks)).
		Debug("fetched item details")

	return items, nil
}

func dedupeSorted(ids []int64) []int64 {
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
	return unique
}

func chunkIDs(ids []int64, size int) [][]int64 {
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for size < len(ids) {
		ids, chunks = ids[size:], append(chunks, ids[:size])
	}
	return append(chunks, ids)
}
