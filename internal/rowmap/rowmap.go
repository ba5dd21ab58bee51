// Package rowmap reads storage rows whose column names drift between
// PascalCase, camelCase, snake_case and lowercase spellings.
//
// Each entity declares an Aliases table: canonical field name -> ordered list
// of accepted column names. A Reader resolves a field to the first alias that
// is present in the row and converts the value. Missing fields never error;
// they read as the zero value (or the supplied default for booleans).
package rowmap

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

// Row is one storage row keyed by column name.
type Row = map[string]any

// Aliases maps a canonical field name to the column names accepted for it.
type Aliases map[string][]string

// Variants expands a PascalCase field name into the spellings storage is
// known to return: as-is, camelCase, snake_case and all-lowercase, followed
// by any extra aliases.
func Variants(name string, extra ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(name)
	add(lowerFirst(name))
	add(snake(name))
	add(strings.ToLower(name))
	for _, e := range extra {
		add(e)
	}
	return out
}

// Reader resolves fields of a single row through an alias table.
type Reader struct {
	row     Row
	aliases Aliases
}

func NewReader(row Row, aliases Aliases) Reader {
	return Reader{row: row, aliases: aliases}
}

// Lookup returns the value of the first alias present in the row. A present
// column holding NULL still counts as a match.
func (r Reader) Lookup(field string) (any, bool) {
	names, ok := r.aliases[field]
	if !ok {
		names = []string{field}
	}
	for _, name := range names {
		if v, ok := r.row[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (r Reader) Has(field string) bool {
	v, ok := r.Lookup(field)
	return ok && v != nil
}

func (r Reader) Raw(field string) any {
	v, _ := r.Lookup(field)
	return v
}

func (r Reader) String(field string) string {
	v, _ := r.Lookup(field)
	return ToString(v)
}

// StringPtr is like String but keeps NULL and missing columns as nil.
func (r Reader) StringPtr(field string) *string {
	v, ok := r.Lookup(field)
	if !ok || v == nil {
		return nil
	}
	s := ToString(v)
	return &s
}

func (r Reader) Bool(field string, def bool) bool {
	v, ok := r.Lookup(field)
	if !ok || v == nil {
		return def
	}
	b, ok := ToBool(v)
	if !ok {
		return def
	}
	return b
}

func (r Reader) Int(field string) int64 {
	v, _ := r.Lookup(field)
	n, _ := ToInt(v)
	return n
}

func (r Reader) Decimal(field string) decimal.Decimal {
	v, _ := r.Lookup(field)
	return ToDecimal(v)
}

// Date renders the field as YYYY-MM-DD ("" when absent).
func (r Reader) Date(field string) string {
	return temporal.NormalizeDateToISODate(r.Raw(field))
}

// Time renders the field as HH:MM:SS, nil when absent or malformed.
func (r Reader) Time(field string) *string {
	return temporal.NormalizeTime(r.Raw(field))
}

// DateTime renders the field as an ISO-8601 timestamp ("" when absent).
func (r Reader) DateTime(field string) string {
	return temporal.NormalizeDateTimeToISOString(r.Raw(field))
}

// DateTimePtr is DateTime with nil for absent values.
func (r Reader) DateTimePtr(field string) *string {
	s := r.DateTime(field)
	if s == "" {
		return nil
	}
	return &s
}

func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case pgtype.UUID:
		if !x.Valid {
			return ""
		}
		return uuid.UUID(x.Bytes).String()
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case time.Time:
		return temporal.NormalizeDateTimeToISOString(x)
	case pgtype.Numeric:
		return ToDecimal(x).String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func ToBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case pgtype.Bool:
		return x.Bool, x.Valid
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	default:
		if n, ok := ToInt(v); ok {
			return n != 0, true
		}
		return false, false
	}
}

func ToInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case float32:
		return int64(x), true
	case float64:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	case pgtype.Int8:
		return x.Int64, x.Valid
	case pgtype.Int4:
		return int64(x.Int32), x.Valid
	case pgtype.Numeric:
		return ToDecimal(x).IntPart(), x.Valid
	default:
		return 0, false
	}
}

func ToDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case pgtype.Numeric:
		if !x.Valid || x.NaN || x.Int == nil {
			return decimal.Zero
		}
		return decimal.NewFromBigInt(x.Int, x.Exp)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	default:
		if n, ok := ToInt(v); ok {
			return decimal.NewFromInt(n)
		}
		return decimal.Zero
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func snake(s string) string {
	r := []rune(s)
	var b strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) {
			if i > 0 && (unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1]) ||
				(i+1 < len(r) && unicode.IsLower(r[i+1]) && unicode.IsUpper(r[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
