// Package patch edits generated model source by locating class and field
// boundaries in line-oriented text. It assumes the fixed conventions of
// the model text generator: a banner marker line, `class Name(BaseModel):`
// declaration lines at column zero, and four-space-indented `name: type`
// field lines. It is not a general source-rewriting toolkit.
package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Banner is the marker line present in all generated output, used as the
// anchor for import injection.
const Banner = "#   filename:  <stdin>"

// fieldIndent is the fixed indentation unit of a field declaration line.
const fieldIndent = "    "

var (
	ErrClassNotFound = errors.New("class not found")
	ErrFieldNotFound = errors.New("field not found")
)

// ClassBlock is a class declaration and its body: line range [Start, End)
// bounded by the next declaration or end of text.
type ClassBlock struct {
	Name  string
	Start int
	End   int
}

// FieldSlot is a field declaration inside a class: line range [Start, End)
// covering the declaration and, for bracketed declarations, every
// continuation line through the closing bracket.
type FieldSlot struct {
	Class     string
	Name      string
	Start     int
	End       int
	Multiline bool
}

// Document is an indexed view over one generated source text. The
// class-block index is derived once per mutation instead of on every
// lookup.
type Document struct {
	lines   []string
	classes []ClassBlock
}

func NewDocument(text string) *Document {
	d := &Document{lines: strings.Split(text, "\n")}
	d.reindex()

	return d
}

// Text reassembles the document.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// Classes returns the names of all class blocks in document order.
func (d *Document) Classes() []string {
	names := make([]string, len(d.classes))
	for i, c := range d.classes {
		names[i] = c.Name
	}

	return names
}

func (d *Document) reindex() {
	d.classes = d.classes[:0]

	for i, line := range d.lines {
		name, ok := className(line)
		if !ok {
			continue
		}

		if n := len(d.classes); n > 0 {
			d.classes[n-1].End = i
		}

		d.classes = append(d.classes, ClassBlock{Name: name, Start: i, End: len(d.lines)})
	}
}

// className extracts the name from a `class Name(BaseModel):` declaration
// line.
func className(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "class ")
	if !ok {
		return "", false
	}

	name, ok := strings.CutSuffix(rest, "(BaseModel):")
	if !ok {
		return "", false
	}

	return name, name != ""
}

// declarationLine renders the declaration line for a class name.
func declarationLine(name string) string {
	return "class " + name + "(BaseModel):"
}

// LocateClass finds the block for the named class.
func (d *Document) LocateClass(name string) (ClassBlock, error) {
	for _, c := range d.classes {
		if c.Name == name {
			return c, nil
		}
	}

	return ClassBlock{}, fmt.Errorf("%w: %q", ErrClassNotFound, name)
}

// LocateField finds the named field's slot inside a class. A declaration
// line whose trailing character opens a bracket extends line by line until
// a line's trailing character is the matching closing bracket.
func (d *Document) LocateField(class, field string) (FieldSlot, error) {
	block, err := d.LocateClass(class)
	if err != nil {
		return FieldSlot{}, err
	}

	prefix := fieldIndent + field + ":"

	for i := block.Start + 1; i < block.End; i++ {
		if !strings.HasPrefix(d.lines[i], prefix) {
			continue
		}

		slot := FieldSlot{Class: class, Name: field, Start: i, End: i + 1}

		if closer, open := openBracket(d.lines[i]); open {
			for j := i + 1; j < block.End; j++ {
				slot.End = j + 1
				if strings.HasSuffix(d.lines[j], closer) {
					break
				}
			}

			slot.Multiline = true
		}

		return slot, nil
	}

	return FieldSlot{}, fmt.Errorf("%w: %q in class %q", ErrFieldNotFound, field, class)
}

// openBracket reports whether the line's trailing character opens a
// bracketed continuation and returns the matching closer.
func openBracket(line string) (string, bool) {
	switch {
	default:
		return "", false
	case strings.HasSuffix(line, "("):
		return ")", true
	case strings.HasSuffix(line, "["):
		return "]", true
	}
}

// HasField reports whether the class body contains the field.
func (d *Document) HasField(class, field string) bool {
	_, err := d.LocateField(class, field)

	return err == nil
}

// Slot returns the exact text covered by a field slot.
func (d *Document) Slot(s FieldSlot) string {
	return strings.Join(d.lines[s.Start:s.End], "\n")
}
