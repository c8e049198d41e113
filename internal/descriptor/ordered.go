package descriptor

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Entry is a key and its value.
type Entry[V any] struct {
	Key   string
	Value V
}

// OrderedMap keeps mapping entries in the order they were declared.
type OrderedMap[V any] struct {
	entries []Entry[V]
	index   map[string]int
}

// Set stores value under key. A new key is appended; an existing key keeps
// its position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry[V]{Key: key, Value: value})
}

// Get returns the value for key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	var zero V
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int { return len(m.entries) }

// Keys returns the keys in declaration order.
func (m *OrderedMap[V]) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in declaration order.
func (m *OrderedMap[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(m.entries))
	copy(out, m.entries)
	return out
}

// UnmarshalYAML decodes a mapping node, preserving key order.
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		var value V
		if err := v.Decode(&value); err != nil {
			return fmt.Errorf("key %q: %w", k.Value, err)
		}
		m.Set(k.Value, value)
	}
	return nil
}
