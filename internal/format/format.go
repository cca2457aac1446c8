// Package format is the optional source-formatting collaborator for
// generated model text. When an external ruff binary is available it is
// used; otherwise a whitespace normalization runs instead. Absence of the
// external tool is never an error.
package format

import (
	"bytes"
	"os/exec"
	"strings"
)

// Tool formats generated source text. Format is idempotent.
type Tool struct {
	path string
}

// Detect looks up an external ruff binary. The returned Tool works either
// way; without the binary it falls back to Normalize.
func Detect() *Tool {
	path, err := exec.LookPath("ruff")
	if err != nil {
		return &Tool{}
	}

	return &Tool{path: path}
}

// Available reports whether the external formatter was found.
func (t *Tool) Available() bool {
	return t.path != ""
}

// Format runs the source through the external formatter when available.
// Any formatter failure degrades to the normalization fallback;
// unformatted output is acceptable and not an error.
func (t *Tool) Format(src string) (string, error) {
	if t.path == "" {
		return Normalize(src), nil
	}

	cmd := exec.Command(t.path, "format", "--stdin-filename", "model.py", "-")
	cmd.Stdin = strings.NewReader(src)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return Normalize(src), nil
	}

	return out.String(), nil
}

// Normalize strips trailing whitespace from every line, collapses runs of
// more than two blank lines, and ensures a single trailing newline.
func Normalize(src string) string {
	lines := strings.Split(src, "\n")

	var (
		out    []string
		blanks int
	)

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")

		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}

		out = append(out, line)
	}

	text := strings.Join(out, "\n")
	text = strings.TrimRight(text, "\n")

	return text + "\n"
}
