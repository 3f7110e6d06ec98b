package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/metrics"
	"github.com/dshills/mediacat-mcp/internal/storage"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

var log = logger.WithName("indexer")

// ErrPathExists is reported for a path whose insert lost to an earlier
// insert of the same path, in this batch or a concurrent one.
var ErrPathExists = errors.New("path already in catalog")

// Indexer ingests batches of candidate paths into the catalog
type Indexer struct {
	storage storage.Storage
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	return &Indexer{storage: store}
}

// AddItems ingests paths and reports, for every input path, whether it was
// inserted, already present, or failed. Paths are handled independently: a
// failure on one never prevents the others. The returned error is reserved
// for programming errors; store failures are reported per path.
//
// Every path is normalized first and the normalized form is what appears in
// the result. Presence is checked once for the whole batch, so a path that
// appears twice in the same batch is inserted once and the repeat is
// reported as a constraint error.
func (idx *Indexer) AddItems(ctx context.Context, paths []string) (*types.AddItemsResult, error) {
	result := types.NewAddItemsResult()
	if len(paths) == 0 {
		return result, nil
	}

	batchID := uuid.New().String()
	startTime := time.Now()
	blog := log.WithFields(logrus.Fields{
		"batch": batchID,
		"paths": len(paths),
	})

	normalized := make([]string, len(paths))
	lookup := make([]string, 0, len(paths))
	for i, p := range paths {
		normalized[i] = types.NormalizePath(p)
		if normalized[i] != "" {
			lookup = append(lookup, normalized[i])
		}
	}

	existing, err := idx.storage.ExistingPaths(ctx, lookup)
	if err != nil {
		blog.WithError(err).Error("duplicate lookup failed, nothing ingested")
		for _, p := range normalized {
			result.Errors = append(result.Errors, itemError(p, err))
		}
		recordBatch(result)
		return result, nil
	}

	for _, p := range normalized {
		if _, dup := existing[p]; dup && p != "" {
			result.Duplicates = append(result.Duplicates, p)
			continue
		}

		id, err := idx.addOne(ctx, p)
		if err != nil {
			blog.WithError(err).WithField("path", p).Debug("path not ingested")
			result.Errors = append(result.Errors, itemError(p, err))
			continue
		}
		result.Success = append(result.Success, id)
	}

	recordBatch(result)
	blog.WithFields(logrus.Fields{
		"added":      len(result.Success),
		"duplicates": len(result.Duplicates),
		"errors":     len(result.Errors),
		"duration":   time.Since(startTime),
	}).Info("ingested batch")

	return result, nil
}

func (idx *Indexer) addOne(ctx context.Context, path string) (int64, error) {
	if path == "" {
		return 0, types.NewError(types.KindMalformedInput, "", types.ErrEmptyPath)
	}
	if err := ctx.Err(); err != nil {
		return 0, types.NewError(types.KindStoreUnavailable, "", err)
	}
	return idx.storage.InsertItem(ctx, types.NewItem(path))
}

// itemError renders err for the batch result. The kind travels separately,
// so the message is the innermost cause without operation prefixes.
func itemError(path string, err error) types.ItemError {
	msg := err.Error()
	var typed *types.Error
	if errors.As(err, &typed) && typed.Err != nil {
		msg = typed.Err.Error()
	}
	if storage.IsUniqueViolation(err) {
		msg = ErrPathExists.Error()
	}
	return types.ItemError{
		Path:  path,
		Error: msg,
		Kind:  types.KindOf(err),
	}
}

func recordBatch(result *types.AddItemsResult) {
	metrics.IngestBatchesTotal.Inc()
	metrics.IngestPathsTotal.WithLabelValues("added").Add(float64(len(result.Success)))
	metrics.IngestPathsTotal.WithLabelValues("duplicate").Add(float64(len(result.Duplicates)))
	metrics.IngestPathsTotal.WithLabelValues("error").Add(float64(len(result.Errors)))
}
