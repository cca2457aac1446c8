package fixture

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ryn-cx/gapi/convert"
	"github.com/ryn-cx/gapi/schema"
)

// Minimizer removes fixtures that are provably redundant: deleting them
// does not change the accumulated schema. The result is locally minimal
// (no single remaining fixture can be removed) but not guaranteed globally
// minimum, because the scan resumes at the removal index rather than
// restarting, so removal order affects the final set.
type Minimizer struct {
	// Promote runs value promotion on each fixture before accumulation,
	// matching what the model build does.
	Promote bool
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func NewMinimizer() *Minimizer {
	return &Minimizer{Promote: true}
}

func (m *Minimizer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}

	return slog.Default()
}

// Accumulate builds a fresh schema accumulation from the given fixture
// files.
func (m *Minimizer) Accumulate(files []string) (*schema.Builder, error) {
	b := schema.NewBuilder()

	for _, path := range files {
		v, err := Load(path)
		if err != nil {
			return nil, err
		}

		if m.Promote {
			v = convert.All(v)
		}

		b.AddObject(v)
	}

	return b, nil
}

// Reduce deletes redundant fixtures from the list and returns the files
// that remain. full is the accumulation over every file; pass nil to have
// it computed. startIndex is where the scan resumes after a removal.
//
// Each removal permanently deletes the backing file. Only one fixture is
// removed per scan; the scan then restarts at the removal index with the
// same full accumulation.
func (m *Minimizer) Reduce(files []string, full *schema.Builder, startIndex int) ([]string, error) {
	if full == nil {
		var err error

		full, err = m.Accumulate(files)
		if err != nil {
			return nil, err
		}
	}

	for i := startIndex; i < len(files); i++ {
		trial := make([]string, 0, len(files)-1)
		trial = append(trial, files[:i]...)
		trial = append(trial, files[i+1:]...)

		partial, err := m.Accumulate(trial)
		if err != nil {
			return nil, err
		}

		if partial.Equal(full) {
			m.logger().Info("fixture is redundant", "file", filepath.Base(files[i]))

			if err := os.Remove(files[i]); err != nil {
				return nil, fmt.Errorf("%w: removing %s: %v", ErrStorage, files[i], err)
			}

			return m.Reduce(trial, full, i)
		}
	}

	return files, nil
}

// ReduceDir reduces the *.json fixtures directly inside a directory.
func (m *Minimizer) ReduceDir(dir string) ([]string, error) {
	files, err := ListDir(dir)
	if err != nil {
		return nil, err
	}

	return m.Reduce(files, nil, 0)
}

// ReduceTree walks every subdirectory beneath root (skipping .git) and
// reduces the fixtures in each.
func (m *Minimizer) ReduceTree(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrStorage, root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".git" {
			continue
		}

		dir := filepath.Join(root, entry.Name())

		if _, err := m.ReduceDir(dir); err != nil {
			return err
		}

		if err := m.ReduceTree(dir); err != nil {
			return err
		}
	}

	return nil
}
