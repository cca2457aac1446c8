package patch

import "strings"

// ReplaceField swaps the located field declaration for newText. The swap
// is a literal whole-block text substitution over the document rather than
// a coordinate splice, so an identical block occurring verbatim elsewhere
// is also altered. That hazard is inherited from the generator's fixed
// conventions and deliberately not resolved here.
func (d *Document) ReplaceField(class, field, newText string) error {
	slot, err := d.LocateField(class, field)
	if err != nil {
		return err
	}

	text := strings.ReplaceAll(d.Text(), d.Slot(slot), newText)
	d.lines = strings.Split(text, "\n")
	d.reindex()

	return nil
}

// InjectSerializer inserts a serializer code block immediately after a
// class declaration line. With a class name the field must exist in that
// class. With an empty class name the block is inserted, best effort,
// into every class that contains the field; zero matching classes is a
// no-op, not an error.
func (d *Document) InjectSerializer(class, field, code string) error {
	if class != "" {
		if _, err := d.LocateField(class, field); err != nil {
			return err
		}

		d.insertAfterDeclaration(class, code)

		return nil
	}

	for _, name := range d.Classes() {
		if d.HasField(name, field) {
			d.insertAfterDeclaration(name, code)
		}
	}

	return nil
}

func (d *Document) insertAfterDeclaration(class string, code string) {
	block, err := d.LocateClass(class)
	if err != nil {
		return
	}

	d.insertLines(block.Start+1, strings.Split(code, "\n"))
}

// InjectImports inserts raw import lines immediately after the banner
// marker line. A document without the marker is returned unchanged; the
// absence is a silent no-op.
func (d *Document) InjectImports(imports []string) {
	if len(imports) == 0 {
		return
	}

	for i, line := range d.lines {
		if strings.Contains(line, Banner) {
			d.insertLines(i+1, imports)

			return
		}
	}
}

func (d *Document) insertLines(at int, inserted []string) {
	lines := make([]string, 0, len(d.lines)+len(inserted))
	lines = append(lines, d.lines[:at]...)
	lines = append(lines, inserted...)
	lines = append(lines, d.lines[at:]...)

	d.lines = lines
	d.reindex()
}
