package event

// Filter selects events by conjunction: every non-empty dimension
// must contain the event's value for the filter to match.
type Filter struct {
	// Categories restricts matching to the listed categories.
	Categories []Category

	// Priorities restricts matching to the listed priorities.
	Priorities []Priority

	// Kinds restricts matching to the listed kinds.
	Kinds []Kind

	// Sources restricts matching to the listed sources.
	Sources []string

	// MinPriority, when set, requires the event priority to be at
	// least this value. It combines with Priorities.
	MinPriority *Priority

	// none marks a filter whose conjunction is unsatisfiable, such as
	// the And of two disjoint kind sets. An empty dimension otherwise
	// means wildcard, so emptiness alone cannot express this.
	none bool
}

// FilterCategories builds a filter matching any of the given categories.
func FilterCategories(categories ...Category) Filter {
	return Filter{Categories: categories}
}

// FilterPriorities builds a filter matching any of the given priorities.
func FilterPriorities(priorities ...Priority) Filter {
	return Filter{Priorities: priorities}
}

// FilterKinds builds a filter matching any of the given kinds.
func FilterKinds(kinds ...Kind) Filter {
	return Filter{Kinds: kinds}
}

// FilterSources builds a filter matching any of the given sources.
func FilterSources(sources ...string) Filter {
	return Filter{Sources: sources}
}

// FilterMinPriority builds a filter matching events at or above p.
func FilterMinPriority(p Priority) Filter {
	return Filter{MinPriority: &p}
}

// IsEmpty reports whether the filter matches every event.
func (f Filter) IsEmpty() bool {
	return !f.none &&
		len(f.Categories) == 0 &&
		len(f.Priorities) == 0 &&
		len(f.Kinds) == 0 &&
		len(f.Sources) == 0 &&
		f.MinPriority == nil
}

// Matches reports whether the event passes every populated dimension.
func (f Filter) Matches(e Event) bool {
	if f.none {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, e.Metadata.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, e.Metadata.Priority) {
		return false
	}
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, e.Kind) {
		return false
	}
	if len(f.Sources) > 0 && !containsString(f.Sources, e.Metadata.Source) {
		return false
	}
	if f.MinPriority != nil && e.Metadata.Priority < *f.MinPriority {
		return false
	}
	return true
}

// And returns the conjunction of two filters. Set dimensions are
// intersected (an empty dimension is a wildcard); MinPriority takes
// the stricter value. The result matches nothing when two populated
// dimensions have no values in common.
func (f Filter) And(other Filter) Filter {
	merged := Filter{none: f.none || other.none}
	merged.Categories, merged.none = intersect(f.Categories, other.Categories, merged.none)
	merged.Priorities, merged.none = intersect(f.Priorities, other.Priorities, merged.none)
	merged.Kinds, merged.none = intersect(f.Kinds, other.Kinds, merged.none)
	merged.Sources, merged.none = intersect(f.Sources, other.Sources, merged.none)
	switch {
	case f.MinPriority == nil:
		merged.MinPriority = other.MinPriority
	case other.MinPriority == nil:
		merged.MinPriority = f.MinPriority
	case *other.MinPriority > *f.MinPriority:
		merged.MinPriority = other.MinPriority
	default:
		merged.MinPriority = f.MinPriority
	}
	return merged
}

func containsCategory(set []Category, c Category) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

func containsPriority(set []Priority, p Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func containsKind(set []Kind, k Kind) bool {
	for _, v := range set {
		if v == k {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// intersect combines one set dimension of two filters. An empty side
// is a wildcard and yields the other side. Both sides populated with
// nothing in common makes the conjunction unsatisfiable.
func intersect[T comparable](a, b []T, none bool) ([]T, bool) {
	if len(a) == 0 {
		return b, none
	}
	if len(b) == 0 {
		return a, none
	}
	set := make(map[T]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []T
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, true
	}
	return out, none
}
