package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		path      string
		title     string
		extension string
	}{
		{"/a/video.mp4", "video", "mp4"},
		{"/a/archive.tar.gz", "archive.tar", "gz"},
		{"/a/README", "README", ""},
		{"/home/u/.bashrc", ".bashrc", ""},
		{"/a/trailing.", "trailing", ""},
		{"relative/clip.MKV", "clip", "MKV"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			title, ext := SplitName(tt.path)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.extension, ext)
		})
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "", NormalizePath(""))
	assert.Equal(t, "", NormalizePath("   \t"))
	assert.Equal(t, "/a/b.mp4", NormalizePath("/a//x/../b.mp4"))
	assert.Equal(t, "/a/video.mp4", NormalizePath("/a/video.mp4"))
}

func TestNewItem(t *testing.T) {
	item := NewItem("/media/beach.mp4")
	assert.Equal(t, "/media/beach.mp4", item.Path)
	assert.Equal(t, "beach", item.Title)
	assert.Equal(t, "mp4", item.Extension)
	assert.NoError(t, item.Validate())

	assert.ErrorIs(t, (&Item{}).Validate(), ErrEmptyPath)
}

func TestItemJSON(t *testing.T) {
	desc := "sunset"
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := Item{
		ID:           7,
		Path:         "/a/video.mp4",
		Title:        "video",
		Extension:    "mp4",
		Description:  &desc,
		Added:        added,
		LastVerified: added.Add(time.Hour),
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(added.Unix()), raw["added"])
	assert.Equal(t, float64(added.Add(time.Hour).Unix()), raw["lastVerified"])
	assert.Equal(t, "sunset", raw["description"])
	assert.Nil(t, raw["thumbnail"])
	assert.Contains(t, raw, "thumbnail")

	var back Item
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, item.ID, back.ID)
	assert.True(t, item.Added.Equal(back.Added))
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("UNIQUE constraint failed: items.path")
	err := NewError(KindConstraintViolation, "insert item", base)

	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "insert item: UNIQUE constraint failed: items.path", err.Error())

	wrapped := fmt.Errorf("batch: %w", err)
	assert.Equal(t, KindConstraintViolation, KindOf(wrapped))
	assert.Equal(t, KindStoreUnavailable, KindOf(base))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestAddItemsResultEncodesEmptySlices(t *testing.T) {
	data, err := json.Marshal(NewAddItemsResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":[],"duplicates":[],"errors":[]}`, string(data))
}

func TestRowPreservesColumnOrder(t *testing.T) {
	row := NewRow(3)
	row.Set("zeta", int64(1))
	row.Set("alpha", "x")
	row.Set("mid", nil)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"x","mid":null}`, string(data))
}
