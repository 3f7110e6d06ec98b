package types

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AddItemsResult partitions a batch of candidate paths by outcome.
type AddItemsResult struct {
	Success    []int64     `json:"success"`    // ids of inserted items, in input order
	Duplicates []string    `json:"duplicates"` // paths already present before the batch
	Errors     []ItemError `json:"errors"`
}

// ItemError records why a single path in a batch was not ingested.
type ItemError struct {
	Path  string    `json:"path"`
	Error string    `json:"error"`
	Kind  ErrorKind `json:"kind,omitempty"`
}

// NewAddItemsResult returns a result with all slices non-nil so that empty
// partitions encode as [] rather than null.
func NewAddItemsResult() *AddItemsResult {
	return &AddItemsResult{
		Success:    []int64{},
		Duplicates: []string{},
		Errors:     []ItemError{},
	}
}

// Total returns the number of paths accounted for.
func (r *AddItemsResult) Total() int {
	return len(r.Success) + len(r.Duplicates) + len(r.Errors)
}

// Row is one result row of a raw query: column name to coerced value, in
// column order. Values are string, int64, float64, []byte or nil.
type Row = orderedmap.OrderedMap[string, any]

// NewRow returns an empty row with capacity for n columns.
func NewRow(n int) *Row {
	return orderedmap.New[string, any](n)
}
