// Package searcher implements catalog search and detail retrieval.
//
// Search is a plain substring match on item title and path; there is no
// ranking beyond recency and no full-text index.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store)
//
//	ids, err := s.Search(ctx, "holiday")
//	items, err := s.FetchDetails(ctx, ids)
//
// # Ordering
//
// Search returns ids ordered by insertion time, newest first, with the id
// as tie-breaker. FetchDetails returns records ordered by id ascending,
// whatever the order of the requested ids.
//
// # Detail Lookups
//
// FetchDetails removes duplicate ids, splits the remainder into chunks of at
// most Config.ChunkSize bound parameters and fetches the chunks concurrently
// with an errgroup. The first failing chunk cancels the others and its error
// is returned. An empty request never touches the store.
package searcher
