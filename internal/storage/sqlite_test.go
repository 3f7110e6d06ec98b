package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mediacat-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog", "database.db")
	storage, err := NewSQLiteStorage(context.Background(), DefaultOptions(path))
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func insertPaths(t *testing.T, s *SQLiteStorage, paths ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(paths))
	for _, p := range paths {
		id, err := s.InsertItem(context.Background(), types.NewItem(p))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)

	_, err := os.Stat(storage.Path())
	require.NoError(t, err, "database file and parent directory should be created")

	ctx := context.Background()
	var mode string
	require.NoError(t, storage.DB().GetContext(ctx, &mode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", strings.ToLower(mode))

	var fk int
	require.NoError(t, storage.DB().GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestNewSQLiteStorageRequiresPath(t *testing.T) {
	_, err := NewSQLiteStorage(context.Background(), DefaultOptions("  "))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.db")
	ctx := context.Background()

	first, err := NewSQLiteStorage(ctx, DefaultOptions(path))
	require.NoError(t, err)
	id, err := first.InsertItem(ctx, types.NewItem("/a/video.mp4"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(ctx, DefaultOptions(path))
	require.NoError(t, err)
	defer second.Close()

	items, err := second.GetItemsByIDs(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/a/video.mp4", items[0].Path)
}

func TestInsertItem(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	item := types.NewItem("/media/holiday/beach.mp4")
	id, err := storage.InsertItem(ctx, item)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, item.ID)

	items, err := storage.GetItemsByIDs(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, "beach", got.Title)
	assert.Equal(t, "mp4", got.Extension)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Thumbnail)
	assert.False(t, got.Added.IsZero())
	assert.False(t, got.LastVerified.IsZero())
}

func TestInsertItemDuplicatePath(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	insertPaths(t, storage, "/a/video.mp4")

	_, err := storage.InsertItem(ctx, types.NewItem("/a/video.mp4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConstraintViolation)
	assert.True(t, IsUniqueViolation(err))
}

func TestInsertItemEmptyPath(t *testing.T) {
	storage := setupTestDB(t)

	_, err := storage.InsertItem(context.Background(), &types.Item{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
	assert.ErrorIs(t, err, types.ErrEmptyPath)
}

func TestIDsAreNotReused(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ids := insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4")
	_, err := storage.DeleteItems(ctx, []int64{ids[1]})
	require.NoError(t, err)

	next := insertPaths(t, storage, "/a/3.mp4")
	assert.Greater(t, next[0], ids[1])
}

func TestExistingPaths(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4")

	existing, err := storage.ExistingPaths(ctx, []string{"/a/1.mp4", "/a/3.mp4", "/a/2.mp4"})
	require.NoError(t, err)
	assert.Len(t, existing, 2)
	assert.Contains(t, existing, "/a/1.mp4")
	assert.Contains(t, existing, "/a/2.mp4")

	empty, err := storage.ExistingPaths(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSearchItemIDs(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ids := insertPaths(t, storage,
		"/media/Beach Day.mp4",
		"/media/mountain.jpg",
		"/archive/beach/notes.txt",
		"/media/50%_off.png",
	)

	t.Run("blank term returns everything newest first", func(t *testing.T) {
		for _, term := range []string{"", "   "} {
			got, err := storage.SearchItemIDs(ctx, term)
			require.NoError(t, err)
			assert.Equal(t, []int64{ids[3], ids[2], ids[1], ids[0]}, got)
		}
	})

	t.Run("matches title or path case-insensitively", func(t *testing.T) {
		got, err := storage.SearchItemIDs(ctx, "BEACH")
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[2], ids[0]}, got)
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		got, err := storage.SearchItemIDs(ctx, "50%_")
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3]}, got)

		got, err = storage.SearchItemIDs(ctx, "%")
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[3]}, got)
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got, err := storage.SearchItemIDs(ctx, "zebra")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSearchOrdersByAddedBeforeID(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ids := insertPaths(t, storage, "/a/new.mp4", "/a/old.mp4")
	_, err := storage.ExecRaw(ctx, "UPDATE items SET added = '2001-01-01 00:00:00' WHERE path = '/a/old.mp4'")
	require.NoError(t, err)

	got, err := storage.SearchItemIDs(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[1]}, got)
}

func TestGetItemsByIDs(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ids := insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4", "/a/3.mp4")

	items, err := storage.GetItemsByIDs(ctx, []int64{ids[2], 9999, ids[0]})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ids[0], items[0].ID)
	assert.Equal(t, ids[2], items[1].ID)

	none, err := storage.GetItemsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteItems(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ids := insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4", "/a/3.mp4")

	deleted, err := storage.DeleteItems(ctx, []int64{ids[2], ids[0], 424242})
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2]}, deleted)

	again, err := storage.DeleteItems(ctx, []int64{ids[2], ids[0]})
	require.NoError(t, err)
	assert.Empty(t, again)

	remaining, err := storage.SearchItemIDs(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[1]}, remaining)
}

func TestQueryRaw(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4")

	var paths []string
	err := storage.QueryRaw(ctx, "SELECT path FROM items ORDER BY id", func(rows *sql.Rows) error {
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				return err
			}
			paths = append(paths, p)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/1.mp4", "/a/2.mp4"}, paths)

	err = storage.QueryRaw(ctx, "SELECT * FROM no_such_table", func(*sql.Rows) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestExecRaw(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4")

	affected, err := storage.ExecRaw(ctx, "UPDATE items SET description = 'x'")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	_, err = storage.ExecRaw(ctx, "INSERT INTO tags (name, category) VALUES ('orphan', 99)")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConstraintViolation, "foreign keys are enforced on pooled connections")
}

func TestGetStats(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	insertPaths(t, storage, "/a/1.mp4", "/a/2.mp4")
	_, err := storage.ExecRaw(ctx, "INSERT INTO tag_categories (name) VALUES ('genre')")
	require.NoError(t, err)

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Items)
	assert.Equal(t, int64(0), stats.Tags)
	assert.Equal(t, int64(1), stats.TagCategories)
	assert.Equal(t, CurrentSchemaVersion, stats.SchemaVersion)
	assert.Greater(t, stats.SizeBytes+stats.WALSizeBytes, int64(0))
	assert.Equal(t, BuildMode, stats.BuildMode)

	storage.UpdateDBMetrics(ctx)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.db")
	storage, err := NewSQLiteStorage(context.Background(), DefaultOptions(path))
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	_, err = storage.SearchItemIDs(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
	assert.Error(t, storage.Ping(context.Background()))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off`, escapeLike("50%_off"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestChunking(t *testing.T) {
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, chunkInt64s([]int64{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]string{{"a"}}, chunkStrings([]string{"a"}, 2))
}
