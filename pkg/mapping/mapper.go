// Package mapping provides the category mapping between Spliit and Actual Budget.
package mapping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is a single Spliit-to-Actual category mapping as it appears in the
// mapping file, in file order.
type Entry struct {
	Spliit string
	Actual string
}

// Mapper maps category names between Spliit and Actual Budget.
//
// The mapping file is a flat object of Spliit category names to Actual
// category names. Spliit keys may be path-qualified ("Food and Drink/Groceries")
// or bare ("Groceries"). The reverse direction is first-match-wins in file
// order, so the map is loaded preserving key order.
type Mapper struct {
	entries         []Entry
	spliitToActual  map[string]string
	actualToSpliit  map[string]string
}

// Load reads a category mapping file and builds the lookup maps.
// The file may be JSON or YAML; both parse through the YAML decoder.
// A missing file yields an empty mapper rather than an error, matching the
// behavior of running without any category mapping configured.
func Load(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("failed to read category mapping file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse category mapping file %s: %w", path, err)
	}

	entries, err := decodeEntries(&root)
	if err != nil {
		return nil, fmt.Errorf("invalid category mapping file %s: %w", path, err)
	}

	return New(entries), nil
}

// New builds a Mapper from mapping entries in order.
func New(entries []Entry) *Mapper {
	m := &Mapper{
		entries:        entries,
		spliitToActual: make(map[string]string, len(entries)),
		actualToSpliit: make(map[string]string, len(entries)),
	}

	for _, e := range entries {
		m.spliitToActual[e.Spliit] = e.Actual
		// First key encountered for an Actual category wins the reverse lookup.
		if _, ok := m.actualToSpliit[e.Actual]; !ok {
			m.actualToSpliit[e.Actual] = e.Spliit
		}
	}

	return m
}

// ToActualCategory maps a Spliit category name to an Actual category name.
// A path-qualified name ("Food and Drink/Groceries") is tried exactly first,
// then by its bare final segment. Returns false when no mapping exists.
func (m *Mapper) ToActualCategory(spliitCategory string) (string, bool) {
	if spliitCategory == "" {
		return "", false
	}

	if actual, ok := m.spliitToActual[spliitCategory]; ok {
		return actual, true
	}

	if idx := strings.LastIndex(spliitCategory, "/"); idx >= 0 {
		if actual, ok := m.spliitToActual[spliitCategory[idx+1:]]; ok {
			return actual, true
		}
	}

	return "", false
}

// ToSpliitCategory maps an Actual category name back to a Spliit category
// name. When several Spliit keys map to the same Actual category, the first
// one in file order wins, regardless of lookup order.
func (m *Mapper) ToSpliitCategory(actualCategory string) (string, bool) {
	if actualCategory == "" {
		return "", false
	}
	spliit, ok := m.actualToSpliit[actualCategory]
	return spliit, ok
}

// Len returns the number of loaded mapping entries.
func (m *Mapper) Len() int {
	return len(m.entries)
}

// Entries returns the mapping entries in file order.
func (m *Mapper) Entries() []Entry {
	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result
}

// decodeEntries walks the YAML document preserving key order. Non-string keys
// or values are rejected instead of being silently coerced.
func decodeEntries(root *yaml.Node) ([]Entry, error) {
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected an object of category names, got %s", node.Tag)
	}

	var entries []Entry
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]

		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode || value.Tag == "!!null" {
			return nil, fmt.Errorf("mapping entry %q must be a string to string pair", key.Value)
		}

		entries = append(entries, Entry{Spliit: key.Value, Actual: value.Value})
	}

	return entries, nil
}
