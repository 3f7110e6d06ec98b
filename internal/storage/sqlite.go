package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/metrics"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

// MaxBindVars is SQLite's default SQLITE_MAX_VARIABLE_NUMBER. Statements that
// expand an IN list are split so that no single statement exceeds it.
const MaxBindVars = 32766

var log = logger.WithName("storage")

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db   *sqlx.DB
	path string
}

// openDatabase opens the pool and checks that the file is usable
func openDatabase(ctx context.Context, opts Options) (*sqlx.DB, error) {
	busy := int(opts.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}

	db, err := sqlx.Open(DriverName, buildDSN(opts.Path, busy))
	if err != nil {
		return nil, err
	}

	// WAL lets readers proceed while one writer holds the lock, so the pool
	// may hold more than one connection.
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens (creating if missing) the database file at
// opts.Path and applies pending migrations.
func NewSQLiteStorage(ctx context.Context, opts Options) (*SQLiteStorage, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, types.NewError(types.KindStoreUnavailable, "open store", errors.New("database path required"))
	}

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, types.NewError(types.KindStoreUnavailable, "open store", fmt.Errorf("failed to resolve database path: %w", err))
	}
	opts.Path = abs

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, types.NewError(types.KindStoreUnavailable, "open store", fmt.Errorf("failed to create data directory: %w", err))
	}

	db, err := openDatabase(ctx, opts)
	if err != nil {
		return nil, types.NewError(types.KindStoreUnavailable, "open store", fmt.Errorf("failed to open database: %w", err))
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, types.NewError(types.KindStoreUnavailable, "open store", fmt.Errorf("failed to apply migrations: %w", err))
	}

	log.WithFields(logrus.Fields{
		"path":       abs,
		"driver":     DriverName,
		"build_mode": BuildMode,
		"max_conns":  db.Stats().MaxOpenConnections,
	}).Info("opened catalog database")

	return &SQLiteStorage{db: db, path: abs}, nil
}

// Path returns the absolute path of the database file
func (s *SQLiteStorage) Path() string {
	return s.path
}

// DB exposes the pool for migrations and tests
func (s *SQLiteStorage) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.db.PingContext(ctx)
	recordQuery("ping", start, err)
	if err != nil {
		return classify("ping", err)
	}
	return nil
}

// Item operations

// SearchItemIDs returns the ids of items whose title or path contains term,
// newest first. A blank term matches every item.
func (s *SQLiteStorage) SearchItemIDs(ctx context.Context, term string) ([]int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("search_items", start, err) }()

	ids := []int64{}
	if strings.TrimSpace(term) == "" {
		err = s.db.SelectContext(ctx, &ids, `SELECT id FROM items ORDER BY added DESC, id DESC`)
	} else {
		pattern := "%" + escapeLike(term) + "%"
		err = s.db.SelectContext(ctx, &ids, `
			SELECT id FROM items
			WHERE title LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\'
			ORDER BY added DESC, id DESC
		`, pattern, pattern)
	}
	if err != nil {
		return nil, classify("search items", err)
	}
	return ids, nil
}

// GetItemsByIDs returns the items with the given ids in ascending id order.
// Unknown ids are omitted. The caller keeps len(ids) under MaxBindVars.
func (s *SQLiteStorage) GetItemsByIDs(ctx context.Context, ids []int64) ([]types.Item, error) {
	items := []types.Item{}
	if len(ids) == 0 {
		return items, nil
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("get_items", start, err) }()

	query, args, err := sqlx.In(`
		SELECT id, path, extension, title, description, thumbnail, added, last_verified
		FROM items WHERE id IN (?) ORDER BY id
	`, ids)
	if err != nil {
		return nil, types.NewError(types.KindMalformedInput, "get items", err)
	}

	if err = s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, classify("get items", err)
	}
	return items, nil
}

// ExistingPaths returns the subset of paths already present in the catalog.
func (s *SQLiteStorage) ExistingPaths(ctx context.Context, paths []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(paths) == 0 {
		return existing, nil
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("existing_paths", start, err) }()

	for _, chunk := range chunkStrings(paths, MaxBindVars) {
		var query string
		var args []interface{}
		query, args, err = sqlx.In(`SELECT path FROM items WHERE path IN (?)`, chunk)
		if err != nil {
			return nil, types.NewError(types.KindMalformedInput, "lookup paths", err)
		}

		var found []string
		if err = s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
			return nil, classify("lookup paths", err)
		}
		for _, p := range found {
			existing[p] = struct{}{}
		}
	}
	return existing, nil
}

// InsertItem inserts a new item and returns its generated id. The item's
// ID field is set on success.
func (s *SQLiteStorage) InsertItem(ctx context.Context, item *types.Item) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, types.NewError(types.KindMalformedInput, "insert item", err)
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("insert_item", start, err) }()

	var id int64
	err = s.db.QueryRowxContext(ctx,
		`INSERT INTO items (path, title, extension) VALUES (?, ?, ?) RETURNING id`,
		item.Path, item.Title, item.Extension,
	).Scan(&id)
	if err != nil {
		return 0, classify("insert item", err)
	}

	item.ID = id
	return id, nil
}

// DeleteItems removes the items with the given ids and returns the ids that
// were actually removed, ascending.
func (s *SQLiteStorage) DeleteItems(ctx context.Context, ids []int64) ([]int64, error) {
	deleted := []int64{}
	if len(ids) == 0 {
		return deleted, nil
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("delete_items", start, err) }()

	for _, chunk := range chunkInt64s(ids, MaxBindVars) {
		var query string
		var args []interface{}
		query, args, err = sqlx.In(`DELETE FROM items WHERE id IN (?) RETURNING id`, chunk)
		if err != nil {
			return nil, types.NewError(types.KindMalformedInput, "delete items", err)
		}

		var removed []int64
		if err = s.db.SelectContext(ctx, &removed, s.db.Rebind(query), args...); err != nil {
			return nil, classify("delete items", err)
		}
		deleted = append(deleted, removed...)
	}

	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })
	return deleted, nil
}

// Raw statement execution

// QueryRaw runs a row-returning statement verbatim and hands the open result
// set to scan. Rows are closed when scan returns.
func (s *SQLiteStorage) QueryRaw(ctx context.Context, statement string, scan func(*sql.Rows) error) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("raw_query", start, err) }()

	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return classify("execute query", err)
	}
	defer func() { _ = rows.Close() }()

	if err = scan(rows); err != nil {
		return classify("execute query", err)
	}
	if err = rows.Err(); err != nil {
		return classify("execute query", err)
	}
	return nil
}

// ExecRaw runs a statement verbatim and returns the number of affected rows.
func (s *SQLiteStorage) ExecRaw(ctx context.Context, statement string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("raw_exec", start, err) }()

	result, err := s.db.ExecContext(ctx, statement)
	if err != nil {
		return 0, classify("execute statement", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, classify("execute statement", err)
	}
	return affected, nil
}

// Status operations

// GetStats returns row counts and file sizes for the catalog database
func (s *SQLiteStorage) GetStats(ctx context.Context) (*Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	stats := &Stats{BuildMode: BuildMode}
	err = s.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM items),
			(SELECT COUNT(*) FROM tags),
			(SELECT COUNT(*) FROM tag_categories)
	`).Scan(&stats.Items, &stats.Tags, &stats.TagCategories)
	if err != nil {
		return nil, classify("stats", err)
	}

	version, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, classify("stats", err)
	}
	stats.SchemaVersion = version.String()

	if info, statErr := os.Stat(s.path); statErr == nil {
		stats.SizeBytes = info.Size()
	}
	if info, statErr := os.Stat(s.path + "-wal"); statErr == nil {
		stats.WALSizeBytes = info.Size()
	}
	stats.OpenConns = s.db.Stats().OpenConnections

	return stats, nil
}

// UpdateDBMetrics refreshes the connection and item gauges
func (s *SQLiteStorage) UpdateDBMetrics(ctx context.Context) {
	metrics.DBConnectionsOpen.Set(float64(s.db.Stats().OpenConnections))

	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		log.WithError(err).Debug("failed to refresh item gauge")
		return
	}
	metrics.DBItemsTotal.Set(float64(count))
}

// classify wraps a driver error with its error kind
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}
	if isConstraintViolation(err) {
		return types.NewError(types.KindConstraintViolation, op, err)
	}
	if isStatementError(err) {
		return types.NewError(types.KindMalformedInput, op, err)
	}
	return types.NewError(types.KindStoreUnavailable, op, err)
}

// IsUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint in the active driver.
func IsUniqueViolation(err error) bool {
	return isUniqueViolation(err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern with ESCAPE '\'
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func chunkStrings(values []string, size int) [][]string {
	var chunks [][]string
	for size < len(values) {
		values, chunks = values[size:], append(chunks, values[:size])
	}
	return append(chunks, values)
}

func chunkInt64s(values []int64, size int) [][]int64 {
	var chunks [][]int64
	for size < len(values) {
		values, chunks = values[size:], append(chunks, values[:size])
	}
	return append(chunks, values)
}
