// Package catalog composes the storage, ingestion, search and raw query
// engines into the five operations offered to callers:
//
//	AddItems        ingest candidate paths, one outcome per path
//	DeleteItems     remove items by id
//	SearchItems     substring search over title and path
//	GetItemDetails  fetch full items by id
//	ExecuteRawQuery run guarded caller SQL
//
// A Catalog is safe for concurrent use.
package catalog
