// Package gateway runs caller-supplied SQL against the catalog and turns
// the result into generic, JSON-ready rows.
//
// # Guard
//
// Before anything reaches the store, the statement is checked against a
// denylist (DROP TABLE and ALTER TABLE, plus any configured phrases). The
// check is case-insensitive and whitespace-tolerant but purely textual.
// A rejected statement returns a types.KindRejectedStatement error.
//
// # Result Shapes
//
// Statements whose leading keyword is SELECT, WITH, VALUES, PRAGMA or
// EXPLAIN return one ordered row per result row:
//
//	rows, _ := gw.Execute(ctx, "SELECT id, title FROM items")
//	// [{"id":1,"title":"beach"}, ...]
//
// Everything else returns a single row with the affected row count:
//
//	rows, _ := gw.Execute(ctx, "UPDATE items SET description = NULL")
//	// [{"affected_rows":3}]
//
// # Column Kinds
//
// Each column's kind comes from its declared type, or from the value when
// the column has no declared type:
//
//	TEXT, CHAR, CLOB      -> string
//	INT (any)             -> int64
//	REAL, FLOA, DOUB      -> float64
//	BLOB                  -> []byte
//	DATETIME, TIMESTAMP   -> RFC 3339 string, "" when unparseable
//	anything else         -> null
//
// SQL NULL is null for every kind.
package gateway
