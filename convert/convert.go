// Package convert promotes raw string leaves inside a document tree to the
// richer temporal scalar types before schema accumulation.
package convert

import (
	"regexp"
	"strconv"
	"time"

	"github.com/ryn-cx/gapi/document"
)

// Only a strict 4-2-2 digit shape may be considered a date. The gate must
// run before the datetime parse because every date is also a lexically
// plausible datetime prefix.
var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Recognized absolute datetime shapes: RFC 3339 with a literal Z or a
// colon-separated numeric offset, and the compact numeric offset variant.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// Value promotes a single string to a more specific scalar if possible, in
// strict order: never promote numeric-looking strings, then date, then
// datetime, then duration. Anything that fails every parse is returned
// unchanged; no parse failure surfaces to the caller.
func Value(s string) any {
	// Do not trust strings that are just integers or floats because it is
	// very easy for identifiers like "007" to be cast to the wrong type.
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}

	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}

	if dateRE.MatchString(s) {
		if d, err := document.ParseDate(s); err == nil {
			return d
		}
	}

	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	if d, err := document.ParseDuration(s); err == nil {
		return d
	}

	return s
}

// All returns a copy of the document with every string leaf promoted via
// Value, visiting mappings and sequences recursively. The caller's tree is
// never aliased or mutated. Non-container input is returned unchanged.
func All(v any) any {
	switch v.(type) {
	default:
		return v
	case map[string]any, []any:
	}

	clone := document.Clone(v)
	promoteInPlace(clone)

	return clone
}

func promoteInPlace(v any) {
	switch v := v.(type) {
	case map[string]any:
		for key, item := range v {
			switch item := item.(type) {
			case string:
				v[key] = Value(item)
			case map[string]any, []any:
				promoteInPlace(item)
			}
		}
	case []any:
		for i, item := range v {
			switch item := item.(type) {
			case string:
				v[i] = Value(item)
			case map[string]any, []any:
				promoteInPlace(item)
			}
		}
	}
}
