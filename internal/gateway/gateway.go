package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/dshills/mediacat-mcp/internal/logger"
	"github.com/dshills/mediacat-mcp/internal/metrics"
	"github.com/dshills/mediacat-mcp/internal/storage"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

// AffectedRowsColumn is the single column returned for non-read statements.
const AffectedRowsColumn = "affected_rows"

// DefaultDenylist holds the phrases always refused by the guard.
var DefaultDenylist = []string{"DROP TABLE", "ALTER TABLE"}

// readKeywords are the leading keywords of statements that return rows.
var readKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"VALUES":  true,
	"PRAGMA":  true,
	"EXPLAIN": true,
}

var log = logger.WithName("gateway")

// Gateway executes caller-supplied SQL after a textual denylist check
type Gateway struct {
	storage  storage.Storage
	denylist []string
}

// New creates a Gateway. extra phrases are added to DefaultDenylist.
func New(store storage.Storage, extra ...string) *Gateway {
	denylist := make([]string, 0, len(DefaultDenylist)+len(extra))
	for _, phrase := range append(append([]string{}, DefaultDenylist...), extra...) {
		if p := normalize(phrase); p != "" {
			denylist = append(denylist, p)
		}
	}
	return &Gateway{storage: store, denylist: denylist}
}

// Check returns a RejectedStatement error if the statement contains a
// denylisted phrase. Matching ignores case and treats any whitespace run as
// a single space. It is a textual filter, not a security boundary: comments
// or string concatenation between keywords are not recognized.
func (g *Gateway) Check(statement string) error {
	text := normalize(statement)
	for _, phrase := range g.denylist {
		if strings.Contains(text, phrase) {
			return types.NewError(types.KindRejectedStatement, "execute raw query",
				fmt.Errorf("statements containing %q are not allowed", phrase))
		}
	}
	return nil
}

// Execute runs statement verbatim. Read statements return one ordered row
// per result row; any other statement returns a single row holding
// affected_rows.
func (g *Gateway) Execute(ctx context.Context, statement string) ([]*types.Row, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, types.NewError(types.KindMalformedInput, "execute raw query", fmt.Errorf("empty statement"))
	}

	if err := g.Check(statement); err != nil {
		metrics.RawQueriesTotal.WithLabelValues("rejected").Inc()
		log.WithFields(logrus.Fields{
			"statement": statement,
		}).Warn("rejected raw statement")
		return nil, err
	}

	if IsReadStatement(statement) {
		rows, err := g.query(ctx, statement)
		if err != nil {
			metrics.RawQueriesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.RawQueriesTotal.WithLabelValues("read").Inc()
		return rows, nil
	}

	affected, err := g.storage.ExecRaw(ctx, statement)
	if err != nil {
		metrics.RawQueriesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RawQueriesTotal.WithLabelValues("write").Inc()

	row := types.NewRow(1)
	row.Set(AffectedRowsColumn, affected)
	return []*types.Row{row}, nil
}

func (g *Gateway) query(ctx context.Context, statement string) ([]*types.Row, error) {
	out := []*types.Row{}
	err := g.storage.QueryRaw(ctx, statement, func(rows *sql.Rows) error {
		columns, err := rows.Columns()
		if err != nil {
			return err
		}
		colTypes, err := rows.ColumnTypes()
		if err != nil {
			return err
		}

		declared := make([]ColumnKind, len(columns))
		hasDecl := make([]bool, len(columns))
		for i, ct := range colTypes {
			declared[i], hasDecl[i] = KindOfDeclared(ct.DatabaseTypeName())
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			row := types.NewRow(len(columns))
			for i, name := range columns {
				kind := declared[i]
				if !hasDecl[i] {
					kind = KindOfValue(values[i])
				}
				row.Set(name, Coerce(kind, values[i]))
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsReadStatement reports whether the statement's leading keyword, after
// whitespace, comments and opening parentheses, is one that returns rows.
func IsReadStatement(statement string) bool {
	return readKeywords[leadingKeyword(statement)]
}

func leadingKeyword(statement string) string {
	s := statement
	for {
		s = strings.TrimLeftFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '(' })
		switch {
		case strings.HasPrefix(s, "--"):
			if nl := strings.IndexByte(s, '\n'); nl >= 0 {
				s = s[nl+1:]
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if end := strings.Index(s, "*/"); end >= 0 {
				s = s[end+2:]
				continue
			}
			return ""
		}
		break
	}

	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}

func normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
