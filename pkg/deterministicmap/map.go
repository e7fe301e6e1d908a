// Package deterministicmap implements an insertion-ordered map used
// throughout snapshot.IbcData: spec.md §4.2/§6 requires that a snapshot's
// JSON encoding and its in-memory diagnostics iterate connections,
// channels, clients, and pending packets in the same reproducible order on
// every run, which a plain Go map cannot guarantee.
package deterministicmap

import (
	"cmp"
	"encoding/json"
	"errors"
	"sort"
)

// ErrBreak stops Range early without treating it as a failure.
var ErrBreak = errors.New("break iteration")

// slot is one key/value pair in the map's backing slice.
type slot[K comparable, V any] struct {
	key K
	val V
}

// Map preserves the order keys were first inserted in, even across
// deletes, and looks up by key in O(1) via an auxiliary index into the
// backing slice.
type Map[K cmp.Ordered, V any] struct {
	pos   map[K]int
	order []slot[K, V]
}

// New returns an empty Map. The zero Map is also usable directly.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{pos: make(map[K]int)}
}

// FromMap builds a Map from a plain Go map, with entries ordered by sorted
// key so that two FromMap calls over equal inputs always produce the same
// iteration order regardless of the source map's internal layout.
func FromMap[K cmp.Ordered, V any](src map[K]V) *Map[K, V] {
	keys := make([]K, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	m := &Map[K, V]{
		pos:   make(map[K]int, len(src)),
		order: make([]slot[K, V], 0, len(src)),
	}
	for _, k := range keys {
		m.pos[k] = len(m.order)
		m.order = append(m.order, slot[K, V]{key: k, val: src[k]})
	}
	return m
}

func (m *Map[K, V]) initIfZero() {
	if m.pos == nil {
		m.pos = make(map[K]int)
	}
}

// Set inserts key with value, or updates it in place if already present.
// A new key is appended after the current last entry.
func (m *Map[K, V]) Set(key K, value V) {
	m.initIfZero()
	if i, ok := m.pos[key]; ok {
		m.order[i].val = value
		return
	}
	m.pos[key] = len(m.order)
	m.order = append(m.order, slot[K, V]{key: key, val: value})
}

// Get returns the value stored at key, and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m.pos == nil {
		var zero V
		return zero, false
	}
	i, ok := m.pos[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.order[i].val, true
}

// Delete removes key if present. Unlike a swap-with-last removal, the
// relative order of every remaining entry is preserved: diagnostics and
// JSON snapshots taken after a delete should not see an unrelated entry
// jump to the deleted slot.
func (m *Map[K, V]) Delete(key K) {
	if m.pos == nil {
		return
	}
	i, ok := m.pos[key]
	if !ok {
		return
	}

	m.order = append(m.order[:i], m.order[i+1:]...)
	delete(m.pos, key)
	for k, p := range m.pos {
		if p > i {
			m.pos[k] = p - 1
		}
	}
}

// Len reports the number of entries currently stored.
func (m *Map[K, V]) Len() int {
	return len(m.order)
}

// Keys returns every key in iteration order.
func (m *Map[K, V]) Keys() []K {
	if len(m.order) == 0 {
		return nil
	}
	out := make([]K, len(m.order))
	for i, s := range m.order {
		out[i] = s.key
	}
	return out
}

// Values returns every value in iteration order.
func (m *Map[K, V]) Values() []V {
	if len(m.order) == 0 {
		return nil
	}
	out := make([]V, len(m.order))
	for i, s := range m.order {
		out[i] = s.val
	}
	return out
}

// Clone returns a deep-enough copy: the returned Map's own slice and index
// are independent of the receiver's, so mutating one never affects the
// other. Stored values themselves are copied by assignment only.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		pos:   make(map[K]int, len(m.pos)),
		order: make([]slot[K, V], len(m.order)),
	}
	copy(c.order, m.order)
	for k, i := range m.pos {
		c.pos[k] = i
	}
	return c
}

// Range visits every entry in iteration order. A visitor that returns
// ErrBreak stops the iteration without propagating an error; any other
// error aborts and is returned to the caller.
func (m *Map[K, V]) Range(visit func(key K, value V) error) error {
	for _, s := range m.order {
		if err := visit(s.key, s.val); err != nil {
			if errors.Is(err, ErrBreak) {
				return nil
			}
			return err
		}
	}
	return nil
}

// MarshalStringKeyed renders a string-keyed Map as a JSON object.
// encoding/json always sorts object keys on marshal, so the output is
// independent of the Map's own iteration order; callers that need a
// specific canonical key form (e.g. "channel:port") must key the map with
// that form themselves before calling this.
func MarshalStringKeyed[V any](m *Map[string, V]) ([]byte, error) {
	plain := make(map[string]V, m.Len())
	_ = m.Range(func(key string, value V) error {
		plain[key] = value
		return nil
	})
	return json.Marshal(plain)
}

// UnmarshalStringKeyed is the inverse of MarshalStringKeyed. The result is
// ordered by sorted key (see FromMap), so repeated round-trips are stable.
func UnmarshalStringKeyed[V any](data []byte) (*Map[string, V], error) {
	var plain map[string]V
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return FromMap(plain), nil
}
