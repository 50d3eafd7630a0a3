package registry

import (
	"fmt"
	"sort"
)

// Get returns a copy of the component's descriptor.
func (r *Registry) Get(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Descriptor{}, false
	}
	return e.desc.clone(), true
}

// States returns the component's lifecycle state.
func (r *Registry) States(id string) (ComponentState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return StateRegistered, false
	}
	return e.state, true
}

// LastError returns the most recent error recorded against the
// component, or nil.
func (r *Registry) LastError(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[id]; ok {
		return e.lastErr
	}
	return nil
}

// IDs returns every registered component id, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ByType returns the ids of components with the given type, sorted.
func (r *Registry) ByType(t Type) []string {
	return r.selectIDs(func(e *entry) bool { return e.desc.Type == t })
}

// ByTag returns the ids of components carrying the tag, sorted.
func (r *Registry) ByTag(tag string) []string {
	return r.selectIDs(func(e *entry) bool {
		for _, t := range e.desc.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// Children returns the ids of components whose parent is id, sorted.
func (r *Registry) Children(id string) []string {
	return r.selectIDs(func(e *entry) bool { return e.desc.Parent == id })
}

// Dependents returns the ids of components that require id, sorted.
func (r *Registry) Dependents(id string) []string {
	return r.selectIDs(func(e *entry) bool {
		for _, dep := range e.desc.Requires {
			if dep == id {
				return true
			}
		}
		return false
	})
}

func (r *Registry) selectIDs(match func(*entry) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for id, e := range r.entries {
		if match(e) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// TreeNode is one component in a parent/child hierarchy.
type TreeNode struct {
	ID       string
	Children []*TreeNode
}

// Tree builds the parent/child hierarchy rooted at rootID. Children
// are sorted by id at every level.
func (r *Registry) Tree(rootID string) (*TreeNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.entries[rootID]; !ok {
		return nil, fmt.Errorf("component %q: %w", rootID, ErrNotRegistered)
	}

	children := make(map[string][]string, len(r.entries))
	for id, e := range r.entries {
		if e.desc.Parent != "" {
			children[e.desc.Parent] = append(children[e.desc.Parent], id)
		}
	}
	for _, ids := range children {
		sort.Strings(ids)
	}

	seen := make(map[string]bool)
	var build func(id string) *TreeNode
	build = func(id string) *TreeNode {
		if seen[id] {
			return nil
		}
		seen[id] = true
		node := &TreeNode{ID: id}
		for _, child := range children[id] {
			if n := build(child); n != nil {
				node.Children = append(node.Children, n)
			}
		}
		return node
	}
	return build(rootID), nil
}
