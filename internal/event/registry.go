package event

import (
	"reflect"
	"sort"
	"sync"
)

// KindAll is the reserved kind under which catch-all subscriptions are
// registered. It is not a valid kind for emitted events.
const KindAll Kind = "*"

// dedupeKey identifies a (kind, handler) pair for idempotent
// re-registration. Only handlers with comparable dynamic types
// participate; the map would panic on anything else.
type dedupeKey struct {
	kind    Kind
	handler Handler
}

// handlerComparable reports whether the handler value can be used as a
// map key.
func handlerComparable(h Handler) bool {
	t := reflect.TypeOf(h)
	return t != nil && t.Comparable()
}

// registry manages subscriptions organized by kind.
// It is safe for concurrent access.
type registry struct {
	mu        sync.RWMutex
	subs      map[Kind][]*subscription
	byID      map[string]*subscription
	byHandler map[dedupeKey]*subscription
	nextSeq   uint64
}

// newRegistry creates a new subscription registry.
func newRegistry() *registry {
	return &registry{
		subs:      make(map[Kind][]*subscription),
		byID:      make(map[string]*subscription),
		byHandler: make(map[dedupeKey]*subscription),
	}
}

// Add inserts a subscription, keeping its kind bucket ordered by
// handler priority then registration order.
func (r *registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	sub.seq = r.nextSeq

	bucket := append(r.subs[sub.kind], sub)
	sort.Slice(bucket, func(i, j int) bool {
		if bucket[i].config.HandlerPriority != bucket[j].config.HandlerPriority {
			return bucket[i].config.HandlerPriority < bucket[j].config.HandlerPriority
		}
		return bucket[i].seq < bucket[j].seq
	})
	r.subs[sub.kind] = bucket

	r.byID[sub.id] = sub

	if sub.dedupe != nil {
		r.byHandler[*sub.dedupe] = sub
	}
}

// FindDefault returns the live default-config subscription for the
// given kind and handler, when the handler value is comparable.
func (r *registry) FindDefault(kind Kind, h Handler) (*subscription, bool) {
	if !handlerComparable(h) {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byHandler[dedupeKey{kind: kind, handler: h}]
	if !ok || !sub.Active() {
		return nil, false
	}
	return sub, true
}

// Remove removes a subscription by ID.
func (r *registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(subID)
}

func (r *registry) removeLocked(subID string) bool {
	sub, exists := r.byID[subID]
	if !exists {
		return false
	}

	bucket := r.subs[sub.kind]
	for i, s := range bucket {
		if s.id == subID {
			r.subs[sub.kind] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(r.subs[sub.kind]) == 0 {
		delete(r.subs, sub.kind)
	}

	delete(r.byID, subID)

	if sub.dedupe != nil {
		if cur, ok := r.byHandler[*sub.dedupe]; ok && cur.id == subID {
			delete(r.byHandler, *sub.dedupe)
		}
	}

	return true
}

// Match returns the subscriptions an event of the given kind should be
// offered to: the kind's bucket followed by the catch-all bucket, each
// in priority order. The result is a copy.
func (r *registry) Match(kind Kind) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	direct := r.subs[kind]
	all := r.subs[KindAll]
	if len(direct) == 0 && len(all) == 0 {
		return nil
	}

	result := make([]*subscription, 0, len(direct)+len(all))
	result = append(result, direct...)
	result = append(result, all...)
	return result
}

// Count returns the total number of subscriptions, including
// cancelled ones not yet swept.
func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// CountActive returns the number of active subscriptions.
func (r *registry) CountActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, sub := range r.byID {
		if sub.Active() {
			count++
		}
	}
	return count
}

// RemoveKind cancels and removes every subscription registered for
// the given kind. Returns the number removed.
func (r *registry) RemoveKind(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.subs[kind]
	if len(bucket) == 0 {
		return 0
	}

	ids := make([]string, 0, len(bucket))
	for _, sub := range bucket {
		sub.Cancel()
		ids = append(ids, sub.id)
	}
	for _, id := range ids {
		r.removeLocked(id)
	}
	return len(ids)
}

// RemoveCancelled sweeps cancelled subscriptions out of the registry.
// Returns the number removed.
func (r *registry) RemoveCancelled() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []string
	for id, sub := range r.byID {
		if !sub.Active() {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		r.removeLocked(id)
	}
	return len(stale)
}

// Clear removes all subscriptions.
func (r *registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = make(map[Kind][]*subscription)
	r.byID = make(map[string]*subscription)
	r.byHandler = make(map[dedupeKey]*subscription)
}
