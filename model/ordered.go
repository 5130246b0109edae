package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// OrderedMap is an insertion-order-preserving mapping from name to value.
// Generator output determinism (§8 "Ordering determinism") depends on
// definitions iterating in the order they were inserted, so every
// collection on Schema (classes, slots, types, enums, subsets, prefixes)
// uses this instead of a plain Go map.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set inserts or updates the value for key. The key's position is only set
// on first insertion; updating an existing key does not move it.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Values returns the values in insertion (key) order.
func (m *OrderedMap[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// Delete removes key, if present.
func (m *OrderedMap[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Equal reports whether m and other hold the same keys in the same order
// with equal values. Defining this lets github.com/google/go-cmp compare
// values embedding an OrderedMap (Schema, ClassDefinition, ...) without
// reaching into its unexported fields.
func (m *OrderedMap[V]) Equal(other *OrderedMap[V]) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
	}
	return reflect.DeepEqual(m.values, other.values)
}

// Clone returns a shallow copy of m.
func (m *OrderedMap[V]) Clone() *OrderedMap[V] {
	out := NewOrderedMap[V]()
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out.Set(k, v)
	}
	return out
}

// MarshalYAML emits m as a mapping node whose keys appear in insertion
// order, so that round-tripping a Schema through package schemaio
// preserves the order generator output determinism depends on (§8
// "Ordering determinism").
func (m *OrderedMap[V]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		var keyNode, valNode yaml.Node
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		if err := valNode.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}
	return node, nil
}

// UnmarshalYAML rebuilds m from a mapping node, inserting keys in the
// order they appear in the document.
func (m *OrderedMap[V]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("model: expected a mapping for OrderedMap, got kind %d", value.Kind)
	}
	*m = *NewOrderedMap[V]()
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		var val V
		if err := value.Content[i+1].Decode(&val); err != nil {
			return err
		}
		m.Set(key, val)
	}
	return nil
}

// MarshalJSON emits m as a JSON object with keys in insertion order.
// encoding/json's map support always sorts keys, so the object is built
// by hand here; no pack dependency provides an order-preserving generic
// map codec.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v, _ := m.Get(k)
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds m from a JSON object, using json.Decoder's token
// stream (rather than decoding into a map) so insertion order matches the
// order keys appear in the document.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // '{'
		return err
	}
	*m = *NewOrderedMap[V]()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("model: expected a string object key, got %v", keyTok)
		}
		var val V
		if err := dec.Decode(&val); err != nil {
			return err
		}
		m.Set(key, val)
	}
	_, err := dec.Token() // '}'
	return err
}
