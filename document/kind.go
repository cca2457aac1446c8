// Package document defines the value tree handled by gapi: string-keyed
// mappings, order-significant sequences, and scalars including the
// temporal types produced by value promotion.
package document

import "time"

//go:generate go tool stringer -type=Kind -output=kind_string.go

type Kind int

const (
	KindInvalid Kind = iota

	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindDateTime
	KindDuration
	KindSequence
	KindMapping

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// KindOf reports the kind of a decoded document value. Values outside the
// document vocabulary report KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	default:
		return KindInvalid
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	case Date:
		return KindDate
	case time.Time:
		return KindDateTime
	case Duration:
		return KindDuration
	case []any:
		return KindSequence
	case map[string]any:
		return KindMapping
	}
}

// IsScalar reports whether the kind is a leaf value.
func (k Kind) IsScalar() bool {
	switch k {
	default:
		return false
	case KindNull, KindBool, KindInt, KindFloat, KindString,
		KindDate, KindDateTime, KindDuration:
		return true
	}
}

// IsTemporal reports whether the kind is one of the promoted temporal types.
func (k Kind) IsTemporal() bool {
	switch k {
	default:
		return false
	case KindDate, KindDateTime, KindDuration:
		return true
	}
}
