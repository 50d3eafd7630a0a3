package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Manifest describes one component on disk. Manifests are JSON or
// YAML files named component.json, component.yaml, or component.yml
// in the component's directory.
type Manifest struct {
	ID       string         `json:"id" yaml:"id"`             // Unique component id
	Kind     string         `json:"kind" yaml:"kind"`         // Catalog factory name
	Type     string         `json:"type" yaml:"type"`         // view, viewmodel, service, utility, dialog, custom
	Scope    string         `json:"scope" yaml:"scope"`       // singleton (default), transient, scoped
	Parent   string         `json:"parent" yaml:"parent"`     // Optional parent component id
	Requires []string       `json:"requires" yaml:"requires"` // Dependency component ids
	Tags     []string       `json:"tags" yaml:"tags"`         // Labels for ByTag queries
	Config   map[string]any `json:"config" yaml:"config"`     // Passed to the factory

	// Internal: directory the manifest was loaded from
	path string
}

// Manifest validation errors.
var (
	ErrMissingID   = errors.New("manifest: id is required")
	ErrInvalidID   = errors.New("manifest: id must be lowercase alphanumeric with hyphens or underscores")
	ErrMissingKind = errors.New("manifest: kind is required")
	ErrInvalidKind = errors.New("manifest: kind must be lowercase alphanumeric with hyphens or underscores")
)

// idPattern validates manifest ids and kind names.
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// LoadManifest loads and validates a component manifest. The format
// follows the file extension: .json, .yaml, or .yml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch ext := filepath.Ext(path); ext {
	case ".json":
		err = json.Unmarshal(data, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Dir returns the directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.path
}

// applyDefaults fills optional fields.
func (m *Manifest) applyDefaults() {
	if m.Type == "" {
		m.Type = "custom"
	}
	if m.Scope == "" {
		m.Scope = "singleton"
	}
}

// Validate checks that the manifest is well formed.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return ErrMissingID
	}
	if !idPattern.MatchString(m.ID) {
		return fmt.Errorf("%w: %s", ErrInvalidID, m.ID)
	}

	if m.Kind == "" {
		return ErrMissingKind
	}
	if !idPattern.MatchString(m.Kind) {
		return fmt.Errorf("%w: %s", ErrInvalidKind, m.Kind)
	}

	if _, err := ParseType(m.Type); err != nil {
		return err
	}
	if _, err := ParseScope(m.Scope); err != nil {
		return err
	}
	return nil
}

// Descriptor converts the manifest into a registry descriptor. The
// instance factory comes from the kind catalog.
func (m *Manifest) Descriptor() (Descriptor, error) {
	t, err := ParseType(m.Type)
	if err != nil {
		return Descriptor{}, err
	}
	s, err := ParseScope(m.Scope)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		ID:       m.ID,
		Type:     t,
		Scope:    s,
		Kind:     m.Kind,
		Parent:   m.Parent,
		Requires: m.Requires,
		Tags:     m.Tags,
		Config:   m.Config,
	}, nil
}
