package gapi

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ryn-cx/gapi/document"
	"github.com/ryn-cx/gapi/fixture"
	"github.com/ryn-cx/gapi/internal/modelcache"
)

// Client ties the fixture store, the schema accumulation, and the compiled
// model registry into the validate-repair workflow. All artifacts for an
// entity live under the client root:
//
//	<root>/fixtures/<entity>/*.json   sample documents
//	<root>/schemas/<entity>.json      serialized schema
//	<root>/models/<entity>.py         generated model source
//	<root>/_temp/<entity>/            round-trip failure diagnostics
type Client struct {
	cfg      Config
	root     string
	store    *fixture.Store
	registry *modelcache.Registry
	logger   *slog.Logger
	custom   map[string]*Customizations
}

// NewClient creates a Client rooted at the given directory.
func NewClient(root string, cfg Config) *Client {
	return &Client{
		cfg:      cfg,
		root:     root,
		store:    fixture.NewStore(filepath.Join(root, "fixtures")),
		registry: modelcache.NewRegistry(),
		logger:   slog.Default(),
		custom:   make(map[string]*Customizations),
	}
}

// SetLogger overrides the default logger.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Store exposes the fixture store.
func (c *Client) Store() *fixture.Store {
	return c.store
}

// SchemaPath returns the entity's serialized schema artifact path.
func (c *Client) SchemaPath(entity string) string {
	return filepath.Join(c.root, "schemas", entity+".json")
}

// ModelPath returns the entity's generated model source path.
func (c *Client) ModelPath(entity string) string {
	return filepath.Join(c.root, "models", entity+".py")
}

func (c *Client) tempDir(entity string) string {
	return filepath.Join(c.root, "_temp", entity)
}

// SetCustomizations registers the customization set applied whenever the
// entity's model is rebuilt.
func (c *Client) SetCustomizations(entity string, custom *Customizations) {
	c.custom[entity] = custom
}

// generator builds a Generator over the entity's current fixture set with
// its customizations applied.
func (c *Client) generator(entity string) (*Generator, error) {
	cfg := c.cfg
	if cfg.ClassName == "" {
		cfg.ClassName = entity
	}

	g := New(cfg)
	g.ApplyCustomizations(c.custom[entity])

	if err := g.AddObjectsFromDir(c.store.EntityDir(entity)); err != nil {
		return nil, err
	}

	return g, nil
}

// UpdateModel rebuilds the entity's schema and model artifacts from every
// stored fixture and swaps the compiled type definition. The swap is
// process-global for the entity and must not race with validation.
func (c *Client) UpdateModel(entity string) (*modelcache.Model, error) {
	g, err := c.generator(entity)
	if err != nil {
		return nil, err
	}

	if err := g.WriteSchemaFile(c.SchemaPath(entity)); err != nil {
		return nil, err
	}

	if err := g.WriteModelFile(c.ModelPath(entity)); err != nil {
		return nil, err
	}

	model, err := c.registry.Swap(entity, g.SchemaJSON())
	if err != nil {
		return nil, err
	}

	c.logger.Info("model updated", "entity", entity)

	return model, nil
}

// model returns the entity's compiled definition, building it on first use.
func (c *Client) model(entity string) (*modelcache.Model, error) {
	if model, ok := c.registry.Lookup(entity); ok {
		return model, nil
	}

	return c.UpdateModel(entity)
}

// ParseResponse validates a raw response document against the entity's
// current type definition.
//
// On a validation failure the document is saved as a new fixture, the model
// is rebuilt from all fixtures and its definition swapped, and validation
// runs once more; a second failure returns ErrRepairExhausted. A value that
// validates but does not re-serialize to the exact original document is a
// fatal modeling error: both forms are persisted under _temp/<entity>/ and
// ErrValidationMismatch is returned.
func (c *Client) ParseResponse(entity string, data []byte) (any, error) {
	raw, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", entity, err)
	}

	model, err := c.model(entity)
	if err != nil {
		return nil, err
	}

	typed, err := model.Validate(raw)
	if err != nil {
		typed, err = c.repair(entity, raw)
		if err != nil {
			return nil, err
		}
	}

	if !document.Equal(raw, typed) {
		if err := c.persistMismatch(entity, raw, typed); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: entity %s", ErrValidationMismatch, entity)
	}

	return typed, nil
}

// repair runs the single allowed repair cycle for a document that failed
// validation.
func (c *Client) repair(entity string, raw any) (any, error) {
	name, err := c.nextFixtureName(entity)
	if err != nil {
		return nil, err
	}

	path, err := c.store.Save(entity, name, raw)
	if err != nil {
		return nil, err
	}

	c.logger.Info("saved fixture for repair", "entity", entity, "file", filepath.Base(path))

	model, err := c.UpdateModel(entity)
	if err != nil {
		return nil, err
	}

	typed, err := model.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: entity %s: %v", ErrRepairExhausted, entity, err)
	}

	return typed, nil
}

// nextFixtureName picks the first unused zero-padded sequence number after
// the current fixture count.
func (c *Client) nextFixtureName(entity string) (string, error) {
	files, err := c.store.Files(entity)
	if err != nil {
		return "", err
	}

	dir := c.store.EntityDir(entity)

	for n := len(files) + 1; ; n++ {
		name := fmt.Sprintf("%05d", n)

		if _, err := os.Stat(filepath.Join(dir, name+".json")); os.IsNotExist(err) {
			return name, nil
		} else if err != nil {
			return "", fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}
}

// persistMismatch writes the original and round-tripped forms of a document
// that failed the round-trip check.
func (c *Client) persistMismatch(entity string, raw, typed any) error {
	dir := c.tempDir(entity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorage, dir, err)
	}

	original, err := document.EncodeIndent(raw)
	if err != nil {
		return err
	}

	parsed, err := document.EncodeIndent(typed)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "original.json"), original, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "parsed.json"), parsed, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	c.logger.Error("parsed value does not round-trip", "entity", entity, "dir", dir)

	return nil
}

// Minimize prunes the entity's fixtures that no longer affect its schema,
// then rebuilds the artifacts if anything was removed.
func (c *Client) Minimize(entity string) error {
	m := fixture.NewMinimizer()
	m.Promote = c.cfg.Promote
	m.Logger = c.logger

	files, err := c.store.Files(entity)
	if err != nil {
		return err
	}

	kept, err := m.Reduce(files, nil, 0)
	if err != nil {
		return err
	}

	if len(kept) == len(files) {
		return nil
	}

	_, err = c.UpdateModel(entity)

	return err
}
