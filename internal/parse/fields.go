package parse

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/entrain-io/entrain/schema"
)

// Export files come from many tools that disagree on field names and
// value types, so the decoding helpers here follow loose truthiness
// rules: empty strings, zero numbers and empty collections all count
// as absent.

// truthy reports whether a decoded JSON value counts as present.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// asMap returns v as a decoded JSON object, or nil.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asList returns v as a decoded JSON array, or nil.
func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// firstItem returns the first element of a decoded array, or nil.
func firstItem(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// stringify renders a decoded JSON value as text. Integral numbers
// render without the ".0" suffix that float64 decoding introduces.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// firstTruthy returns the first truthy value among keys, or nil.
func firstTruthy(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// firstString is firstTruthy rendered as text.
func firstString(m map[string]any, keys ...string) string {
	return stringify(firstTruthy(m, keys...))
}

// getOr returns the value at key as text, or fallback when the key is
// missing entirely. Present-but-empty values are kept.
func getOr(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		return stringify(v)
	}
	return fallback
}

// intAt returns the number at key truncated to an int, or 0.
func intAt(m map[string]any, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}

// epochTime converts fractional epoch seconds to a local time.
func epochTime(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*float64(time.Second)))
}

// parseTimestamp interprets the loosely typed timestamp values found in
// chat exports. Numbers are epoch seconds; with epochMillis set, values
// above 1e12 are read as epoch milliseconds instead. Strings try
// RFC 3339 first and then each layout in order.
func parseTimestamp(v any, layouts []string, epochMillis bool) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		if epochMillis && t > 1e12 {
			t /= 1000
		}
		return epochTime(t), true
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, true
		}
		for _, layout := range layouts {
			if ts, err := time.ParseInLocation(layout, t, time.Local); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// eventTime picks the first truthy timestamp field on msg and parses
// it. Rows without a usable timestamp fall back to the ingestion time.
func eventTime(msg map[string]any, fields, layouts []string, epochMillis bool) time.Time {
	if v := firstTruthy(msg, fields...); v != nil {
		if ts, ok := parseTimestamp(v, layouts, epochMillis); ok {
			return ts
		}
	}
	return time.Now()
}

// sortEventsByTime restores chronological order after ingestion.
func sortEventsByTime(events []schema.InteractionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readZipFile reads one member of an open archive.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// readZipMember extracts the named member from a ZIP archive.
func readZipMember(path, name string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == name {
			return readZipFile(f)
		}
	}
	return nil, fmt.Errorf("%s not found in %s", name, path)
}
