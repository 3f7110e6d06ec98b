// Package types provides shared type definitions for the mediacat catalog.
//
// This package defines the domain types used across the storage, ingestion,
// search and gateway components: items, tags, batch results, raw query rows
// and classified errors.
//
// # Core Types
//
// Item represents a tracked filesystem path. Title and extension are derived
// from the file name when an item is created:
//
//	item := types.NewItem("/media/holiday/beach.mp4")
//	// item.Title == "beach", item.Extension == "mp4"
//
// Items encode to JSON with camelCase keys and unix-second timestamps:
//
//	{"id":1,"path":"/media/holiday/beach.mp4","extension":"mp4","title":"beach",
//	 "description":null,"thumbnail":null,"added":1700000000,"lastVerified":1700000000}
//
// # Batch Results
//
// AddItemsResult partitions an ingestion batch into inserted ids, paths that
// were already present, and per-path failures:
//
//	result := types.NewAddItemsResult()
//	result.Errors = append(result.Errors, types.ItemError{
//	    Path:  "",
//	    Error: types.ErrEmptyPath.Error(),
//	    Kind:  types.KindMalformedInput,
//	})
//
// # Errors
//
// Failures crossing the catalog boundary are *Error values carrying an
// ErrorKind. They match the sentinel of their kind:
//
//	if errors.Is(err, types.ErrRejectedStatement) {
//	    // the raw query guard refused the statement
//	}
package types
