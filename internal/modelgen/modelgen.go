// Package modelgen turns a serialized schema document into generated model
// source text with fixed structural conventions: a banner marker line,
// `class Name(BaseModel):` declarations, and four-space-indented field
// lines. The customization patcher depends on exactly these conventions.
package modelgen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Banner lines present at the top of all generated output. The filename
// line is the anchor for import injection.
const (
	bannerHeader = "# generated by datamodel-codegen:"
	BannerMarker = "#   filename:  <stdin>"
)

// maxLineWidth is the wrap point for field declarations; longer lines are
// split into a bracketed multi-line Field(...) form.
const maxLineWidth = 88

// Config controls naming conventions, strictness toward unknown fields,
// and the temporal-type representation of generated models.
type Config struct {
	// ClassName is the root class name. Empty means "Model".
	ClassName string
	// SnakeCaseFields renames properties to snake_case with an alias back
	// to the original key.
	SnakeCaseFields bool
	// ForbidExtra makes every class reject unknown fields.
	ForbidExtra bool
	// AwareDatetime represents date-time values as AwareDatetime instead
	// of a naive datetime.
	AwareDatetime bool
}

func DefaultConfig() Config {
	return Config{
		SnakeCaseFields: true,
		ForbidExtra:     true,
		AwareDatetime:   true,
	}
}

// Generate renders generated model source from serialized schema text. It
// is a pure function of its inputs: identical schema text and config
// always produce identical source.
func Generate(schemaText string, cfg Config) (string, error) {
	var root map[string]any
	if err := json.Unmarshal([]byte(schemaText), &root); err != nil {
		return "", fmt.Errorf("parsing schema text: %w", err)
	}

	g := &generator{cfg: cfg, used: map[string]bool{}}

	rootName := cfg.ClassName
	if rootName == "" {
		rootName = "Model"
	}

	if typeName, _ := root["type"].(string); typeName != "object" {
		return "", fmt.Errorf("root schema must be an object, got %v", root["type"])
	}

	if _, err := g.buildClass(rootName, root); err != nil {
		return "", err
	}

	return g.render(), nil
}

type classDef struct {
	name   string
	fields []string
}

type generator struct {
	cfg     Config
	classes []classDef
	used    map[string]bool

	needDate      bool
	needDatetime  bool
	needTimedelta bool
	needAware     bool
	needField     bool
}

// buildClass emits a class for an object schema and returns its allocated
// name. Nested object classes are built first so they appear above their
// first use, matching the generator conventions the patcher assumes.
func (g *generator) buildClass(baseName string, s map[string]any) (string, error) {
	name := g.allocate(baseName)

	props, _ := s["properties"].(map[string]any)
	required := requiredSet(s)

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var fields []string

	for _, key := range keys {
		ps, ok := props[key].(map[string]any)
		if !ok {
			return "", fmt.Errorf("schema property %q must be a mapping, got %T", key, props[key])
		}

		field, err := g.fieldLines(key, ps, required[key])
		if err != nil {
			return "", err
		}

		fields = append(fields, field...)
	}

	g.classes = append(g.classes, classDef{name: name, fields: fields})

	return name, nil
}

func (g *generator) allocate(baseName string) string {
	name := baseName

	for i := 1; g.used[name]; i++ {
		name = fmt.Sprintf("%s%d", baseName, i)
	}

	g.used[name] = true

	return name
}

func requiredSet(s map[string]any) map[string]bool {
	out := map[string]bool{}

	required, _ := s["required"].([]any)
	for _, key := range required {
		if name, ok := key.(string); ok {
			out[name] = true
		}
	}

	return out
}

func (g *generator) fieldLines(key string, s map[string]any, required bool) ([]string, error) {
	name, aliased := FieldName(key, g.cfg.SnakeCaseFields)

	typ, err := g.typeFor(key, s)
	if err != nil {
		return nil, err
	}

	if !required && !strings.HasSuffix(typ, "None") {
		typ += " | None"
	}

	var rhs string

	switch {
	case aliased && required:
		rhs = fmt.Sprintf("Field(..., alias='%s')", key)

		g.needField = true
	case aliased:
		rhs = fmt.Sprintf("Field(None, alias='%s')", key)

		g.needField = true
	case !required:
		rhs = "None"
	}

	line := "    " + name + ": " + typ
	if rhs != "" {
		line += " = " + rhs
	}

	if len(line) <= maxLineWidth || !strings.HasPrefix(rhs, "Field(") {
		return []string{line}, nil
	}

	// Long Field(...) declarations wrap into the bracketed multi-line
	// form the patcher's slot extension understands.
	args := strings.TrimSuffix(strings.TrimPrefix(rhs, "Field("), ")")

	return []string{
		"    " + name + ": " + typ + " = Field(",
		"        " + args,
		"    )",
	}, nil
}

// typeFor renders the type annotation for one schema node, creating nested
// classes as needed. key provides the naming base for nested classes.
func (g *generator) typeFor(key string, s map[string]any) (string, error) {
	if anyOf, ok := s["anyOf"].([]any); ok {
		var parts []string

		for _, variant := range anyOf {
			vs, ok := variant.(map[string]any)
			if !ok {
				return "", fmt.Errorf("schema anyOf entry must be a mapping, got %T", variant)
			}

			part, err := g.typeFor(key, vs)
			if err != nil {
				return "", err
			}

			parts = append(parts, part)
		}

		return unionType(parts), nil
	}

	switch typ := s["type"].(type) {
	case string:
		return g.typedAnnotation(key, typ, s)
	case []any:
		var parts []string

		for _, t := range typ {
			name, ok := t.(string)
			if !ok {
				return "", fmt.Errorf("schema type list entry must be a string, got %T", t)
			}

			part, err := g.typedAnnotation(key, name, s)
			if err != nil {
				return "", err
			}

			parts = append(parts, part)
		}

		return unionType(parts), nil
	default:
		return "", fmt.Errorf("property %q: schema type must be a string or list, got %T", key, typ)
	}
}

func (g *generator) typedAnnotation(key, typ string, s map[string]any) (string, error) {
	switch typ {
	default:
		return "", fmt.Errorf("property %q: unknown schema type %q", key, typ)
	case "null":
		return "None", nil
	case "boolean":
		return "bool", nil
	case "integer":
		return "int", nil
	case "number":
		return "float", nil
	case "string":
		return g.stringAnnotation(s), nil
	case "object":
		return g.buildClass(PascalCase(key), s)
	case "array":
		items, ok := s["items"].(map[string]any)
		if !ok {
			// Nothing was ever accumulated for the items, so the element
			// type is unknowable.
			return "list[None]", nil
		}

		item, err := g.typeFor(key, items)
		if err != nil {
			return "", err
		}

		return "list[" + item + "]", nil
	}
}

func (g *generator) stringAnnotation(s map[string]any) string {
	format, _ := s["format"].(string)

	switch format {
	default:
		return "str"
	case "date":
		g.needDate = true

		return "date"
	case "date-time":
		if g.cfg.AwareDatetime {
			g.needAware = true

			return "AwareDatetime"
		}

		g.needDatetime = true

		return "datetime"
	case "duration":
		g.needTimedelta = true

		return "timedelta"
	}
}

// unionType joins variant annotations with None kept last, deduplicated in
// first-seen order.
func unionType(parts []string) string {
	seen := map[string]bool{}
	hasNone := false

	var out []string

	for _, part := range parts {
		if part == "None" {
			hasNone = true
			continue
		}

		if !seen[part] {
			seen[part] = true

			out = append(out, part)
		}
	}

	if hasNone {
		out = append(out, "None")
	}

	return strings.Join(out, " | ")
}

func (g *generator) render() string {
	var b strings.Builder

	b.WriteString(bannerHeader + "\n")
	b.WriteString(BannerMarker + "\n\n")
	b.WriteString("from __future__ import annotations\n")

	if imports := g.datetimeImports(); imports != "" {
		b.WriteString("\n" + imports + "\n")
	}

	b.WriteString("\n" + g.pydanticImports() + "\n")

	for _, class := range g.classes {
		b.WriteString("\n\nclass " + class.name + "(BaseModel):\n")

		var body []string

		if g.cfg.ForbidExtra {
			body = append(body,
				"    model_config = ConfigDict(",
				"        extra='forbid',",
				"    )")
		}

		body = append(body, class.fields...)

		if len(body) == 0 {
			body = []string{"    pass"}
		}

		b.WriteString(strings.Join(body, "\n") + "\n")
	}

	return b.String()
}

func (g *generator) datetimeImports() string {
	var names []string

	if g.needDate {
		names = append(names, "date")
	}

	if g.needDatetime {
		names = append(names, "datetime")
	}

	if g.needTimedelta {
		names = append(names, "timedelta")
	}

	if len(names) == 0 {
		return ""
	}

	return "from datetime import " + strings.Join(names, ", ")
}

func (g *generator) pydanticImports() string {
	names := []string{"BaseModel"}

	if g.needAware {
		names = append(names, "AwareDatetime")
	}

	if g.cfg.ForbidExtra {
		names = append(names, "ConfigDict")
	}

	if g.needField {
		names = append(names, "Field")
	}

	sort.Strings(names)

	return "from pydantic import " + strings.Join(names, ", ")
}
