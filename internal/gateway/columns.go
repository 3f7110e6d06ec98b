package gateway

import (
	"strconv"
	"strings"
	"time"
)

// ColumnKind decides how a result column's values are coerced.
type ColumnKind int

const (
	ColumnUnknown ColumnKind = iota
	ColumnText
	ColumnInteger
	ColumnReal
	ColumnBlob
	ColumnDatetime
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	case ColumnReal:
		return "real"
	case ColumnBlob:
		return "blob"
	case ColumnDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// KindOfDeclared maps a declared column type to a kind using SQLite's
// affinity rules, with DATETIME and TIMESTAMP split out. An empty declared
// type (expressions, aggregates) returns ColumnUnknown with ok=false; the
// caller then infers the kind from the value.
func KindOfDeclared(declared string) (kind ColumnKind, ok bool) {
	t := strings.ToUpper(strings.TrimSpace(declared))
	switch {
	case t == "":
		return ColumnUnknown, false
	case t == "DATETIME" || t == "TIMESTAMP":
		return ColumnDatetime, true
	case strings.Contains(t, "INT"):
		return ColumnInteger, true
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return ColumnText, true
	case strings.Contains(t, "BLOB"):
		return ColumnBlob, true
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return ColumnReal, true
	default:
		return ColumnUnknown, true
	}
}

// KindOfValue infers a kind from a scanned driver value.
func KindOfValue(v any) ColumnKind {
	switch v.(type) {
	case int64:
		return ColumnInteger
	case float64:
		return ColumnReal
	case string:
		return ColumnText
	case []byte:
		return ColumnBlob
	case time.Time:
		return ColumnDatetime
	default:
		return ColumnUnknown
	}
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Coerce converts a scanned value into the representation for kind:
// string, int64, float64, []byte or nil. SQL NULL is always nil. Values that
// cannot be represented in their column's kind become nil, except datetimes,
// which become "".
func Coerce(kind ColumnKind, v any) any {
	if v == nil {
		return nil
	}

	switch kind {
	case ColumnText:
		switch x := v.(type) {
		case string:
			return x
		case []byte:
			return string(x)
		case int64:
			return strconv.FormatInt(x, 10)
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64)
		case time.Time:
			return x.Format(time.RFC3339)
		}
	case ColumnInteger:
		switch x := v.(type) {
		case int64:
			return x
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		case string:
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return n
			}
		case []byte:
			if n, err := strconv.ParseInt(string(x), 10, 64); err == nil {
				return n
			}
		}
	case ColumnReal:
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		case string:
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return f
			}
		}
	case ColumnBlob:
		switch x := v.(type) {
		case []byte:
			return x
		case string:
			return []byte(x)
		}
	case ColumnDatetime:
		return formatDatetime(v)
	}
	return nil
}

func formatDatetime(v any) string {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case string:
		return parseDatetime(x)
	case []byte:
		return parseDatetime(string(x))
	case int64:
		return time.Unix(x, 0).UTC().Format(time.RFC3339)
	}
	return ""
}

func parseDatetime(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return ""
}
