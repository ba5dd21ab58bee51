// Package temporal normalizes the date and time encodings that arrive from
// clients and from storage rows into canonical wire strings.
//
// Times become "HH:MM:SS" (or nil when they cannot be understood), dates become
// "YYYY-MM-DD" and timestamps become UTC ISO-8601 strings with millisecond
// precision. Absent values normalize to the empty string for dates and to nil
// for times; a malformed time is dropped rather than reported.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	ISOLayout       = "2006-01-02T15:04:05.000Z"
	epochDatePrefix = "1970-01-01 "
)

var (
	fullTimeRe  = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)
	shortTimeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// layouts tried after the input is prefixed with an arbitrary epoch date
var bareTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 3:04:05 PM",
	"2006-01-02 3:04:05PM",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3PM",
	"2006-01-02 3 PM",
}

var otherDateLayouts = []string{
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// NormalizeTime returns a canonical "HH:MM:SS" string, or nil when the input
// is absent or cannot be read as a time of day.
func NormalizeTime(input any) *string {
	switch v := input.(type) {
	case nil:
		return nil
	case *string:
		if v == nil {
			return nil
		}
		return normalizeTimeString(*v)
	case string:
		return normalizeTimeString(v)
	case []byte:
		return normalizeTimeString(string(v))
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return ptr(v.UTC().Format(TimeLayout))
	case *time.Time:
		if v == nil {
			return nil
		}
		return NormalizeTime(*v)
	case pgtype.Time:
		if !v.Valid {
			return nil
		}
		return ptr(formatMicroseconds(v.Microseconds))
	case time.Duration:
		return ptr(formatMicroseconds(v.Microseconds()))
	default:
		return normalizeTimeString(fmt.Sprint(v))
	}
}

func normalizeTimeString(raw string) *string {
	s := strings.TrimSpace(raw)
	if isAbsent(s) {
		return nil
	}

	if m := fullTimeRe.FindStringSubmatch(s); m != nil {
		if h, mi, se, ok := clockParts(m[1], m[2], m[3]); ok {
			return ptr(fmt.Sprintf("%02d:%02d:%02d", h, mi, se))
		}
	}

	if m := shortTimeRe.FindStringSubmatch(s); m != nil {
		if h, mi, _, ok := clockParts(m[1], m[2], "0"); ok {
			return ptr(fmt.Sprintf("%02d:%02d:00", h, mi))
		}
	}

	if t, ok := parseISODateTime(s); ok {
		return ptr(t.UTC().Format(TimeLayout))
	}

	for _, layout := range bareTimeLayouts {
		if t, err := time.Parse(layout, epochDatePrefix+strings.ToUpper(s)); err == nil {
			return ptr(t.UTC().Format(TimeLayout))
		}
	}

	return nil
}

func clockParts(hs, ms, ss string) (h, m, s int, ok bool) {
	h, errH := strconv.Atoi(hs)
	m, errM := strconv.Atoi(ms)
	s, errS := strconv.Atoi(ss)
	if errH != nil || errM != nil || errS != nil {
		return 0, 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, 0, 0, false
	}
	return h, m, s, true
}

// NormalizeDateToISODate reduces a date value to its "YYYY-MM-DD" portion.
// Absent input yields "". Strings that do not look like a date are passed
// through with any time portion removed so storage can reject them.
func NormalizeDateToISODate(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case *string:
		if v == nil {
			return ""
		}
		return normalizeDateString(*v)
	case string:
		return normalizeDateString(v)
	case []byte:
		return normalizeDateString(string(v))
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format(DateLayout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return NormalizeDateToISODate(*v)
	case pgtype.Date:
		if !v.Valid {
			return ""
		}
		return v.Time.Format(DateLayout)
	default:
		return normalizeDateString(fmt.Sprint(v))
	}
}

func normalizeDateString(raw string) string {
	s := strings.TrimSpace(raw)
	if isAbsent(s) {
		return ""
	}

	if isoDateRe.MatchString(s) {
		if t, ok := parseISODateTime(s); ok && hasZone(s) {
			return t.UTC().Format(DateLayout)
		}
		return s[:10]
	}

	for _, layout := range otherDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}

	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

// NormalizeDateTimeToISOString renders date-like values as UTC ISO-8601
// strings. Strings that cannot be parsed are passed through unchanged.
func NormalizeDateTimeToISOString(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case *string:
		if v == nil {
			return ""
		}
		return normalizeDateTimeString(*v)
	case string:
		return normalizeDateTimeString(v)
	case []byte:
		return normalizeDateTimeString(string(v))
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format(ISOLayout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return NormalizeDateTimeToISOString(*v)
	case pgtype.Timestamptz:
		if !v.Valid {
			return ""
		}
		return v.Time.UTC().Format(ISOLayout)
	case pgtype.Timestamp:
		if !v.Valid {
			return ""
		}
		return v.Time.UTC().Format(ISOLayout)
	case pgtype.Date:
		if !v.Valid {
			return ""
		}
		return v.Time.UTC().Format(ISOLayout)
	default:
		return normalizeDateTimeString(fmt.Sprint(v))
	}
}

func normalizeDateTimeString(raw string) string {
	s := strings.TrimSpace(raw)
	if isAbsent(s) {
		return ""
	}
	if t, ok := parseISODateTime(s); ok {
		return t.UTC().Format(ISOLayout)
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999999999Z07:00", s); err == nil {
		return t.UTC().Format(ISOLayout)
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999999999", s); err == nil {
		return t.UTC().Format(ISOLayout)
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC().Format(ISOLayout)
	}
	return s
}

// ParseDate parses a value already normalized by NormalizeDateToISODate.
func ParseDate(input any, loc *time.Location) (time.Time, error) {
	s := NormalizeDateToISODate(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func parseISODateTime(s string) (time.Time, bool) {
	if !strings.Contains(s, "T") {
		return time.Time{}, false
	}
	for _, layout := range isoDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasZone(s string) bool {
	i := strings.IndexByte(s, 'T')
	if i < 0 {
		return false
	}
	rest := s[i:]
	return strings.HasSuffix(rest, "Z") || strings.ContainsAny(rest, "+-")
}

func formatMicroseconds(us int64) string {
	total := us / 1_000_000
	h := (total / 3600) % 24
	m := (total / 60) % 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func isAbsent(s string) bool {
	return s == "" || s == "null" || s == "undefined"
}

func ptr(s string) *string {
	return &s
}
