package modelgen

import (
	"strings"
	"unicode"
)

// PascalCase normalizes a name such as "test_model" or "episode list" into
// a class name like "TestModel".
func PascalCase(name string) string {
	var b strings.Builder

	upperNext := true

	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))

			upperNext = false
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// SnakeCase converts a field name like "FieldNameThatIsLong" to
// "field_name_that_is_long". Uppercase runs collapse into a single word,
// so "HTTPCode" becomes "http_code".
func SnakeCase(name string) string {
	runes := []rune(name)

	var b strings.Builder

	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary && lastRune(&b) != '_' {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(r))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func lastRune(b *strings.Builder) rune {
	s := b.String()
	if s == "" {
		return 0
	}

	return rune(s[len(s)-1])
}

// FieldName renders a schema property key as a generated field name:
// snake_cased, with names that cannot start an identifier prefixed by
// "field". Returns the name and whether it differs from the key (which
// forces an alias).
func FieldName(key string, snakeCase bool) (string, bool) {
	name := key
	if snakeCase {
		name = SnakeCase(key)
	}

	if name == "" {
		name = "field"
	}

	// Leading underscores and digits are not valid public pydantic field
	// names.
	if name[0] == '_' {
		name = "field" + name
	} else if name[0] >= '0' && name[0] <= '9' {
		name = "field_" + name
	}

	return name, name != key
}
