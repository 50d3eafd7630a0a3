package registry

import (
	"fmt"
	"sort"
)

// RegisterKind adds a factory to the kind catalog. Descriptors that
// carry no factory of their own are built with the catalog entry named
// by their Kind; discovered manifests rely on this. Registering a kind
// again replaces the earlier factory.
func (r *Registry) RegisterKind(kind string, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidDescriptor)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for kind %q", ErrInvalidDescriptor, kind)
	}

	r.mu.Lock()
	r.catalog[kind] = factory
	r.mu.Unlock()

	r.logger.Debug("registered kind %s", kind)
	return nil
}

// Kinds returns the catalog's kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.catalog))
	for k := range r.catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
