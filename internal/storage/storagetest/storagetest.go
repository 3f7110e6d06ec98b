// Package storagetest provides test doubles for storage.Storage.
package storagetest

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dshills/mediacat-mcp/internal/storage"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

// ErrNoBackend is returned by Spy methods that have neither an override nor
// a backing store.
var ErrNoBackend = errors.New("storagetest: no backing store")

// NewSQLite opens a fresh catalog database under t.TempDir and closes it
// when the test ends.
func NewSQLite(t testing.TB) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(context.Background(),
		storage.DefaultOptions(filepath.Join(t.TempDir(), "database.db")))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Spy records every call and forwards it to an override func when set,
// otherwise to Backend.
type Spy struct {
	Backend storage.Storage

	SearchItemIDsFunc func(ctx context.Context, term string) ([]int64, error)
	GetItemsByIDsFunc func(ctx context.Context, ids []int64) ([]types.Item, error)
	ExistingPathsFunc func(ctx context.Context, paths []string) (map[string]struct{}, error)
	InsertItemFunc    func(ctx context.Context, item *types.Item) (int64, error)
	DeleteItemsFunc   func(ctx context.Context, ids []int64) ([]int64, error)

	mu    sync.Mutex
	calls map[string]int
}

// NewSpy wraps backend, which may be nil when every used method is overridden.
func NewSpy(backend storage.Storage) *Spy {
	return &Spy{Backend: backend, calls: make(map[string]int)}
}

// Calls returns how many times method was invoked.
func (s *Spy) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (s *Spy) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Spy) record(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
}

func (s *Spy) SearchItemIDs(ctx context.Context, term string) ([]int64, error) {
	s.record("SearchItemIDs")
	if s.SearchItemIDsFunc != nil {
		return s.SearchItemIDsFunc(ctx, term)
	}
	if s.Backend == nil {
		return nil, ErrNoBackend
	}
	return s.Backend.SearchItemIDs(ctx, term)
}

func (s *Spy) GetItemsByIDs(ctx context.Context, ids []int64) ([]types.Item, error) {
	s.record("GetItemsByIDs")
	if s.GetItemsByIDsFunc != nil {
		return s.GetItemsByIDsFunc(ctx, ids)
	}
	if s.Backend == nil {
		return nil, ErrNoBackend
	}
	return s.Backend.GetItemsByIDs(ctx, ids)
}

func (s *Spy) ExistingPaths(ctx context.Context, paths []string) (map[string]struct{}, error) {
	s.record("ExistingPaths")
	if s.ExistingPathsFunc != nil {
		return s.ExistingPathsFunc(ctx, paths)
	}
	if s.Backend == nil {
		return nil, ErrNoBackend
	}
	return s.Backend.ExistingPaths(ctx, paths)
}

func (s *Spy) InsertItem(ctx context.Context, item *types.Item) (int64, error) {
	s.record("InsertItem")
	if s.InsertItemFunc != nil {
		return s.InsertItemFunc(ctx, item)
	}
	if s.Backend == nil {
		return 0, ErrNoBackend
	}
	return s.Backend.InsertItem(ctx, item)
}

func (s *Spy) DeleteItems(ctx context.Context, ids []int64) ([]int64, error) {
	s.record("DeleteItems")
	if s.DeleteItemsFunc != nil {
		return s.DeleteItemsFunc(ctx, ids)
	}
	if s.Backend == nil {
		return nil, ErrNoBackend
	}
	return s.Backend.DeleteItems(ctx, ids)
}

func (s *Spy) QueryRaw(ctx context.Context, statement string, scan func(*sql.Rows) error) error {
	s.record("QueryRaw")
	if s.Backend == nil {
		return ErrNoBackend
	}
	return s.Backend.QueryRaw(ctx, statement, scan)
}

func (s *Spy) ExecRaw(ctx context.Context, statement string) (int64, error) {
	s.record("ExecRaw")
	if s.Backend == nil {
		return 0, ErrNoBackend
	}
	return s.Backend.ExecRaw(ctx, statement)
}

func (s *Spy) GetStats(ctx context.Context) (*storage.Stats, error) {
	s.record("GetStats")
	if s.Backend == nil {
		return nil, ErrNoBackend
	}
	return s.Backend.GetStats(ctx)
}

func (s *Spy) Ping(ctx context.Context) error {
	s.record("Ping")
	if s.Backend == nil {
		return ErrNoBackend
	}
	return s.Backend.Ping(ctx)
}

func (s *Spy) Close() error {
	s.record("Close")
	if s.Backend == nil {
		return nil
	}
	return s.Backend.Close()
}

var _ storage.Storage = (*Spy)(nil)
