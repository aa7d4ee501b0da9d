package relay

import (
	"slices"
	"sync"

	"github.com/dshills/relay/internal/relay/pattern"
)

// Registry stores bindings in three coherent indices: by channel and
// event type, by owning relay, and by method. A binding is present in
// all three or in none, and empty index entries are pruned.
// It is thread-safe for concurrent access; query results are
// point-in-time snapshots.
type Registry struct {
	mu sync.RWMutex

	byEvent  map[string]*channelIndex
	channels []string // channel keys in insertion order

	byRelay  map[RelayID][]*Binding
	byMethod map[Method][]*Binding

	members map[*Binding]struct{}
}

// channelIndex holds the event-type buckets of one channel.
type channelIndex struct {
	byType map[string][]*Binding
	types  []string // event-type keys in insertion order
}

// NewRegistry creates an empty binding registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.byEvent = make(map[string]*channelIndex)
	r.channels = nil
	r.byRelay = make(map[RelayID][]*Binding)
	r.byMethod = make(map[Method][]*Binding)
	r.members = make(map[*Binding]struct{})
}

// Add inserts b into every index. Adding a binding that is already
// present is a no-op.
func (r *Registry) Add(b *Binding) error {
	if b == nil {
		return ErrNilBinding
	}
	if !b.method.IsBound() {
		return &ConfigError{Op: "add", Method: b.method, Err: ErrUnboundMethod}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[b]; exists {
		return nil
	}
	r.members[b] = struct{}{}

	ci, ok := r.byEvent[b.channel]
	if !ok {
		ci = &channelIndex{byType: make(map[string][]*Binding)}
		r.byEvent[b.channel] = ci
		r.channels = append(r.channels, b.channel)
	}
	if _, ok := ci.byType[b.eventType]; !ok {
		ci.types = append(ci.types, b.eventType)
	}
	ci.byType[b.eventType] = append(ci.byType[b.eventType], b)

	r.byRelay[b.method.Relay] = append(r.byRelay[b.method.Relay], b)
	r.byMethod[b.method] = append(r.byMethod[b.method], b)

	return nil
}

// Remove deletes b from every index. Removing nil or a binding that is
// not present is a no-op. Returns true if b was removed.
func (r *Registry) Remove(b *Binding) bool {
	if b == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(b)
}

func (r *Registry) removeLocked(b *Binding) bool {
	if _, exists := r.members[b]; !exists {
		return false
	}
	delete(r.members, b)

	if ci, ok := r.byEvent[b.channel]; ok {
		if rest := without(ci.byType[b.eventType], b); len(rest) > 0 {
			ci.byType[b.eventType] = rest
		} else {
			delete(ci.byType, b.eventType)
			ci.types = deleteKey(ci.types, b.eventType)
		}
		if len(ci.byType) == 0 {
			delete(r.byEvent, b.channel)
			r.channels = deleteKey(r.channels, b.channel)
		}
	}

	if rest := without(r.byRelay[b.method.Relay], b); len(rest) > 0 {
		r.byRelay[b.method.Relay] = rest
	} else {
		delete(r.byRelay, b.method.Relay)
	}

	if rest := without(r.byMethod[b.method], b); len(rest) > 0 {
		r.byMethod[b.method] = rest
	} else {
		delete(r.byMethod, b.method)
	}

	return true
}

// RemoveRelay removes every binding owned by the relay.
// Unknown or zero IDs are a no-op. Returns the number of bindings removed.
func (r *Registry) RemoveRelay(id RelayID) int {
	if id == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owned := slices.Clone(r.byRelay[id])
	removed := 0
	for _, b := range owned {
		if r.removeLocked(b) {
			removed++
		}
	}
	return removed
}

// Clear removes all bindings.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reset()
}

// GetByEvent returns the bindings of the given kind whose channel and
// event type match the query. Either argument may contain '*'
// wildcards. A key registered literally as "*" matches every query.
// Results follow channel insertion order, then event-type insertion
// order, then binding insertion order.
func (r *Registry) GetByEvent(channel, eventType string, kind Kind) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.exactLocked(channel, eventType) {
		ci, ok := r.byEvent[channel]
		if !ok {
			return nil
		}
		return filterKind(nil, ci.byType[eventType], kind)
	}

	var result []*Binding
	for _, ch := range r.channels {
		if !keyMatches(ch, channel) {
			continue
		}
		ci := r.byEvent[ch]
		for _, et := range ci.types {
			if keyMatches(et, eventType) {
				result = filterKind(result, ci.byType[et], kind)
			}
		}
	}
	return result
}

// exactLocked reports whether a query can be answered by a single
// bucket lookup: no wildcard in the query and no catch-all key in play.
func (r *Registry) exactLocked(channel, eventType string) bool {
	if pattern.HasWildcard(channel) || pattern.HasWildcard(eventType) {
		return false
	}
	if _, ok := r.byEvent[pattern.Wildcard]; ok {
		return false
	}
	if ci, ok := r.byEvent[channel]; ok {
		if _, ok := ci.byType[pattern.Wildcard]; ok {
			return false
		}
	}
	return true
}

// keyMatches reports whether a registered key answers a query.
func keyMatches(key, query string) bool {
	return key == pattern.Wildcard || pattern.Matches(key, query)
}

// GetByRelay returns the bindings of the given kind owned by the relay.
func (r *Registry) GetByRelay(id RelayID, kind Kind) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterKind(nil, r.byRelay[id], kind)
}

// GetByMethod returns the bindings of the given kind declared for method.
func (r *Registry) GetByMethod(m Method, kind Kind) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterKind(nil, r.byMethod[m], kind)
}

// Contains reports whether b is registered.
func (r *Registry) Contains(b *Binding) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[b]
	return ok
}

// Len returns the number of registered bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}

// Channels returns the registered channel keys in insertion order.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.channels)
}

// EventTypes returns the event-type keys registered under channel in
// insertion order.
func (r *Registry) EventTypes(channel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ci, ok := r.byEvent[channel]
	if !ok {
		return nil
	}
	return slices.Clone(ci.types)
}

// filterKind appends the bindings of src accepted by kind to dst.
func filterKind(dst, src []*Binding, kind Kind) []*Binding {
	for _, b := range src {
		if kind.accepts(b.kind) {
			dst = append(dst, b)
		}
	}
	return dst
}

// without returns list with b removed, preserving order.
func without(list []*Binding, b *Binding) []*Binding {
	i := slices.Index(list, b)
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}

func deleteKey(keys []string, key string) []string {
	i := slices.Index(keys, key)
	if i < 0 {
		return keys
	}
	return slices.Delete(keys, i, i+1)
}
