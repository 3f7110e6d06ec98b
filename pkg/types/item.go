package types

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"
)

// Item is a tracked filesystem path.
type Item struct {
	ID           int64     `db:"id"`
	Path         string    `db:"path"`
	Title        string    `db:"title"`
	Extension    string    `db:"extension"`
	Description  *string   `db:"description"`
	Thumbnail    *string   `db:"thumbnail"`
	Added        time.Time `db:"added"`
	LastVerified time.Time `db:"last_verified"`
}

// itemJSON is the wire shape of an Item: camelCase keys, timestamps in unix seconds.
type itemJSON struct {
	ID           int64   `json:"id"`
	Path         string  `json:"path"`
	Extension    string  `json:"extension"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Thumbnail    *string `json:"thumbnail"`
	Added        int64   `json:"added"`
	LastVerified int64   `json:"lastVerified"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:           i.ID,
		Path:         i.Path,
		Extension:    i.Extension,
		Title:        i.Title,
		Description:  i.Description,
		Thumbnail:    i.Thumbnail,
		Added:        i.Added.Unix(),
		LastVerified: i.LastVerified.Unix(),
	})
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var w itemJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*i = Item{
		ID:           w.ID,
		Path:         w.Path,
		Extension:    w.Extension,
		Title:        w.Title,
		Description:  w.Description,
		Thumbnail:    w.Thumbnail,
		Added:        time.Unix(w.Added, 0).UTC(),
		LastVerified: time.Unix(w.LastVerified, 0).UTC(),
	}
	return nil
}

// Validate checks the fields a new item must carry before insertion.
func (i *Item) Validate() error {
	if i.Path == "" {
		return ErrEmptyPath
	}
	if i.ID < 0 {
		return ErrInvalidItemID
	}
	return nil
}

// NormalizePath trims surrounding whitespace and cleans the path. A blank
// path normalizes to "".
func NormalizePath(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	return filepath.Clean(p)
}

// SplitName derives the title and extension of a path from its final
// element. The extension is the text after the last dot; a name with no dot,
// or whose only dot is the leading one (".bashrc"), has no extension.
func SplitName(p string) (title, extension string) {
	name := filepath.Base(p)
	if name == "." || name == string(filepath.Separator) {
		return "", ""
	}
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	return name[:dot], name[dot+1:]
}

// NewItem builds an unsaved item for path with title and extension derived
// from the file name.
func NewItem(path string) *Item {
	title, ext := SplitName(path)
	return &Item{Path: path, Title: title, Extension: ext}
}

// Tag is a label attached to items. Persisted shape only.
type Tag struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category int64  `db:"category" json:"category"`
}

// TagCategory groups tags.
type TagCategory struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
