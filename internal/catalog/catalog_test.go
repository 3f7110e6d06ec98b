package catalog

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mediacat-mcp/internal/metrics"
	"github.com/dshills/mediacat-mcp/internal/searcher"
	"github.com/dshills/mediacat-mcp/internal/storage"
	"github.com/dshills/mediacat-mcp/internal/storage/storagetest"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

func newTestCatalog(t *testing.T, opts ...Option) (*Catalog, *storagetest.Spy) {
	t.Helper()
	spy := storagetest.NewSpy(storagetest.NewSQLite(t))
	return New(spy, opts...), spy
}

func TestIngestScenarioWithEmptyAndRepeatedPath(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	result, err := c.AddItems(ctx, []string{"/a/video.mp4", "", "/a/video.mp4"})
	require.NoError(t, err)

	require.Len(t, result.Success, 1)
	assert.Empty(t, result.Duplicates)

	var emptyErrors int
	for _, e := range result.Errors {
		if e.Path == "" {
			emptyErrors++
			assert.Equal(t, types.KindMalformedInput, e.Kind)
		}
	}
	assert.Equal(t, 1, emptyErrors)

	items, err := c.GetItemDetails(ctx, result.Success)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/a/video.mp4", items[0].Path)
}

func TestIngestScenarioWithExistingPath(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.AddItems(ctx, []string{"/a/doc.pdf"})
	require.NoError(t, err)

	result, err := c.AddItems(ctx, []string{"/a/doc.pdf", "/b/new.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/doc.pdf"}, result.Duplicates)
	require.Len(t, result.Success, 1)
	assert.Empty(t, result.Errors)

	items, err := c.GetItemDetails(ctx, result.Success)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/b/new.txt", items[0].Path)
	assert.Equal(t, "new", items[0].Title)
	assert.Equal(t, "txt", items[0].Extension)
}

func TestIngestIsIdempotent(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.AddItems(ctx, []string{"/m/song.flac"})
	require.NoError(t, err)
	require.Len(t, first.Success, 1)

	second, err := c.AddItems(ctx, []string{"/m/song.flac"})
	require.NoError(t, err)
	assert.Empty(t, second.Success)
	assert.Equal(t, []string{"/m/song.flac"}, second.Duplicates)
}

func TestDeleteItemsTwice(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	added, err := c.AddItems(ctx, []string{"/x/1.png", "/x/2.png", "/x/3.png"})
	require.NoError(t, err)
	require.Len(t, added.Success, 3)

	request := append([]int64{999999}, added.Success...)
	removed, err := c.DeleteItems(ctx, request)
	require.NoError(t, err)
	assert.ElementsMatch(t, added.Success, removed)

	removed, err = c.DeleteItems(ctx, request)
	require.NoError(t, err)
	assert.Empty(t, removed)

	ids, err := c.SearchItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteItemsEmptyInput(t *testing.T) {
	c, spy := newTestCatalog(t)

	removed, err := c.DeleteItems(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, removed)
	assert.Empty(t, removed)
	assert.Equal(t, 0, spy.TotalCalls())
}

func TestDeleteItemsDedupesBeforeStore(t *testing.T) {
	spy := storagetest.NewSpy(nil)
	var got []int64
	spy.DeleteItemsFunc = func(_ context.Context, ids []int64) ([]int64, error) {
		got = ids
		return ids, nil
	}
	c := New(spy)

	_, err := c.DeleteItems(context.Background(), []int64{5, 2, 5, 9, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5, 9}, got)
}

func TestDeleteItemsStoreFailure(t *testing.T) {
	spy := storagetest.NewSpy(nil)
	spy.DeleteItemsFunc = func(context.Context, []int64) ([]int64, error) {
		return nil, types.NewError(types.KindStoreUnavailable, "delete items", assert.AnError)
	}
	c := New(spy)

	_, err := c.DeleteItems(context.Background(), []int64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestUnfilteredSearchMatchesAllDetails(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	added, err := c.AddItems(ctx, []string{"/p/a.jpg", "/p/b.jpg", "/p/c.jpg"})
	require.NoError(t, err)
	require.Len(t, added.Success, 3)

	ids, err := c.SearchItems(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, added.Success, ids)

	// Same insertion second: newest first falls back to the larger id.
	assert.Equal(t, []int64{added.Success[2], added.Success[1], added.Success[0]}, ids)

	items, err := c.GetItemDetails(ctx, ids)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, added.Success[i], item.ID)
	}
}

func TestSearchItemsByTerm(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	added, err := c.AddItems(ctx, []string{"/holiday/Beach.jpg", "/work/report.pdf"})
	require.NoError(t, err)

	ids, err := c.SearchItems(ctx, "beach")
	require.NoError(t, err)
	assert.Equal(t, []int64{added.Success[0]}, ids)

	ids, err = c.SearchItems(ctx, "/work/")
	require.NoError(t, err)
	assert.Equal(t, []int64{added.Success[1]}, ids)
}

func TestGetItemDetailsSubset(t *testing.T) {
	c, _ := newTestCatalog(t, WithSearcherConfig(&searcher.Config{ChunkSize: 1, Concurrency: 2}))
	ctx := context.Background()

	added, err := c.AddItems(ctx, []string{"/d/1.txt", "/d/2.txt"})
	require.NoError(t, err)

	items, err := c.GetItemDetails(ctx, []int64{added.Success[1], 424242, added.Success[1], added.Success[0]})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, added.Success[0], items[0].ID)
	assert.Equal(t, added.Success[1], items[1].ID)
}

func TestExecuteRawQueryScenario(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	added, err := c.AddItems(ctx, []string{"/only/one.mkv"})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, added.Success)

	rows, err := c.ExecuteRawQuery(ctx, "SELECT id, path FROM items WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	id, _ := rows[0].Get("id")
	path, _ := rows[0].Get("path")
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "/only/one.mkv", path)
	assert.Equal(t, 2, rows[0].Len())
}

func TestExecuteRawQueryDenylist(t *testing.T) {
	c, spy := newTestCatalog(t, WithDenylist("DELETE FROM"))
	ctx := context.Background()

	for _, stmt := range []string{"drop   TABLE items", "ALTER\ttable items RENAME TO x", "delete from items"} {
		_, err := c.ExecuteRawQuery(ctx, stmt)
		assert.ErrorIs(t, err, types.ErrRejectedStatement, stmt)
	}
	assert.Equal(t, 0, spy.TotalCalls())
}

func TestStatsAndPing(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.AddItems(ctx, []string{"/s/1.gif"})
	require.NoError(t, err)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Items)
	assert.Equal(t, storage.BuildMode, stats.BuildMode)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/catalog.db"

	c, err := Open(ctx, storage.DefaultOptions(path))
	require.NoError(t, err)

	_, err = c.AddItems(ctx, []string{"/persist/me.ogg"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(ctx, storage.DefaultOptions(path))
	require.NoError(t, err)
	defer c.Close()

	ids, err := c.SearchItems(ctx, "me")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestRefreshMetrics(t *testing.T) {
	c := New(storagetest.NewSQLite(t))
	ctx := context.Background()

	_, err := c.AddItems(ctx, []string{"/g/1.wav", "/g/2.wav"})
	require.NoError(t, err)

	c.RefreshMetrics(ctx)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.DBItemsTotal))

	// A backend without gauges is skipped.
	New(storagetest.NewSpy(nil)).RefreshMetrics(ctx)
}
