// Package nomap implements a string-keyed map that preserves insertion
// order. CDF files present attributes and variables in the order of their
// on-disk linked lists, and that order must survive a load/save cycle, so
// the file model cannot use Go's unordered built-in map.
//
// Lookup cost is linear for small maps. Once the map grows past a threshold
// an xxHash64 index over the keys is built lazily, keeping name lookups O(1)
// without paying the hashing cost for the typical file with a handful of
// attributes.
package nomap

import (
	"iter"

	"github.com/cespare/xxhash/v2"
)

// indexThreshold is the entry count above which the hash index is built.
const indexThreshold = 16

type entry[V any] struct {
	key   string
	value V
}

// Map is an insertion-ordered map from string keys to values of type V.
//
// The zero value is ready to use. Map is not safe for concurrent use, even
// by readers only: a lookup may build the hash index.
type Map[V any] struct {
	entries []entry[V]
	index   map[uint64][]int // key hash → candidate positions, nil until built
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.entries)
}

// Get returns the value stored under key and whether it exists.
func (m *Map[V]) Get(key string) (V, bool) {
	if i := m.find(key); i >= 0 {
		return m.entries[i].value, true
	}

	var zero V

	return zero, false
}

// Contains reports whether key exists.
func (m *Map[V]) Contains(key string) bool {
	return m.find(key) >= 0
}

// Set stores value under key. An existing entry is replaced in place,
// keeping its insertion position; a new entry is appended.
func (m *Map[V]) Set(key string, value V) {
	if i := m.find(key); i >= 0 {
		m.entries[i].value = value
		return
	}

	m.entries = append(m.entries, entry[V]{key: key, value: value})

	if m.index != nil {
		h := xxhash.Sum64String(key)
		m.index[h] = append(m.index[h], len(m.entries)-1)
	} else if len(m.entries) > indexThreshold {
		m.buildIndex()
	}
}

// Remove deletes the entry stored under key, preserving the order of the
// remaining entries. It reports whether an entry was removed.
func (m *Map[V]) Remove(key string) bool {
	i := m.find(key)
	if i < 0 {
		return false
	}

	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	// Positions past the removed entry shifted; rebuild lazily on next lookup.
	m.index = nil

	return true
}

// Keys returns the keys in insertion order. The slice is freshly allocated.
func (m *Map[V]) Keys() []string {
	keys := make([]string, len(m.entries))
	for i := range m.entries {
		keys[i] = m.entries[i].key
	}

	return keys
}

// Values returns the values in insertion order. The slice is freshly allocated.
func (m *Map[V]) Values() []V {
	values := make([]V, len(m.entries))
	for i := range m.entries {
		values[i] = m.entries[i].value
	}

	return values
}

// At returns the key and value at position i in insertion order.
// It panics if i is out of range.
func (m *Map[V]) At(i int) (string, V) {
	e := m.entries[i]
	return e.key, e.value
}

// All returns an iterator over (key, value) pairs in insertion order.
//
// Example:
//
//	for name, v := range file.Variables.All() {
//	    fmt.Println(name, v.Type())
//	}
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for i := range m.entries {
			if !yield(m.entries[i].key, m.entries[i].value) {
				return
			}
		}
	}
}

func (m *Map[V]) find(key string) int {
	if m.index == nil && len(m.entries) > indexThreshold {
		m.buildIndex()
	}

	if m.index != nil {
		for _, i := range m.index[xxhash.Sum64String(key)] {
			if m.entries[i].key == key {
				return i
			}
		}

		return -1
	}

	for i := range m.entries {
		if m.entries[i].key == key {
			return i
		}
	}

	return -1
}

func (m *Map[V]) buildIndex() {
	m.index = make(map[uint64][]int, len(m.entries))
	for i := range m.entries {
		h := xxhash.Sum64String(m.entries[i].key)
		m.index[h] = append(m.index[h], i)
	}
}
