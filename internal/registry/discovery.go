package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// manifestNames are the file names Discover looks for in each
// component directory, in preference order.
var manifestNames = []string{"component.json", "component.yaml", "component.yml"}

var errNoManifest = errors.New("no component manifest")

// Discover scans each root for component directories carrying a
// manifest. The first root wins on duplicate ids; results come back
// sorted by id. Missing roots are skipped, and directories with
// unreadable or invalid manifests are logged and skipped.
func (r *Registry) Discover(roots ...string) ([]*Manifest, error) {
	discovered := make(map[string]*Manifest)

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Warn("skipping component root %s: %v", root, err)
			}
			continue
		}

		for _, de := range entries {
			if !de.IsDir() {
				continue
			}
			dir := filepath.Join(root, de.Name())
			m, err := loadManifestFromDir(dir)
			if err != nil {
				if !errors.Is(err, errNoManifest) {
					r.logger.Warn("skipping component at %s: %v", dir, err)
				}
				continue
			}
			// Don't override earlier discoveries (first root wins).
			if _, exists := discovered[m.ID]; exists {
				continue
			}
			discovered[m.ID] = m
		}
	}

	out := make([]*Manifest, 0, len(discovered))
	for _, m := range discovered {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RegisterDiscovered registers a descriptor for every manifest,
// continuing past individual failures.
func (r *Registry) RegisterDiscovered(manifests []*Manifest) error {
	var errs []error
	for _, m := range manifests {
		d, err := m.Descriptor()
		if err != nil {
			errs = append(errs, fmt.Errorf("component %q: %w", m.ID, err))
			continue
		}
		if _, err := r.Register(d); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d discovered components: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// loadManifestFromDir loads the first manifest file present in dir.
func loadManifestFromDir(dir string) (*Manifest, error) {
	for _, name := range manifestNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadManifest(path)
	}
	return nil, errNoManifest
}
