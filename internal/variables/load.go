package variables

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileEntry is one name's binding in a variable file: a scalar plus
// its unit, or a list plus its unit. Only one of Value/Array is set.
type fileEntry struct {
	Value *float64  `yaml:"value,omitempty"`
	Array []float64 `yaml:"array,omitempty"`
	Unit  string    `yaml:"unit"`
}

// LoadFile reads a variable file (spec.md §6.3) into store: a flat YAML
// mapping of fully-qualified names to {value|array, unit}, loaded as
// externally-supplied input (SetInput, never Set).
//
// Grounded on internal/builder's yaml.v3 use for the mission
// declaration file — the same format family, one level flatter.
func LoadFile(path string, store *Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("variables: read %s: %w", path, err)
	}
	var raw map[string]fileEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("variables: parse %s: %w", path, err)
	}
	for name, entry := range raw {
		switch {
		case entry.Array != nil:
			store.SetInput(name, Variable{Array: entry.Array, Unit: entry.Unit, IsList: true})
		case entry.Value != nil:
			store.SetInput(name, Variable{Value: *entry.Value, Unit: entry.Unit})
		default:
			return fmt.Errorf("variables: %s: neither value nor array given", name)
		}
	}
	return nil
}
