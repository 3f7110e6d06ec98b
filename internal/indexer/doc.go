// Package indexer implements batch ingestion of filesystem paths into the
// catalog.
//
// # Basic Usage
//
//	idx := indexer.New(store)
//
//	result, err := idx.AddItems(ctx, []string{"/media/a.mp4", "/media/b.jpg"})
//
//	fmt.Printf("added %d, duplicates %d, errors %d\n",
//	    len(result.Success), len(result.Duplicates), len(result.Errors))
//
// # Ingestion Pipeline
//
// Each batch runs in three stages:
//
//  1. Normalize: blank paths become "", others are cleaned with filepath.Clean
//  2. Duplicate check: one bound IN (...) lookup for the whole batch
//  3. Insert: one INSERT ... RETURNING id per remaining path, in input order
//
// Title and extension are derived from the file name at insert time:
// "archive.tar.gz" becomes title "archive.tar" with extension "gz".
//
// # Error Isolation
//
// There is no enclosing transaction. Every input path ends up in exactly one
// of Success, Duplicates or Errors. Errors carry the failure message and its
// kind (MalformedInput for empty paths, ConstraintViolation for a path that
// was inserted by someone else after the duplicate check, StoreUnavailable
// otherwise). If the duplicate lookup itself fails, every path is reported
// as an error and nothing is inserted.
//
// The check-then-insert sequence is not atomic. Two concurrent batches
// adding the same new path both pass the duplicate check; the UNIQUE
// constraint on items.path admits one and the other reports an error.
package indexer
