package builder

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RawValue holds one declaration-file scalar exactly as written, before
// variable resolution (spec.md §4.9): a bare number, a "<number>
// <unit>" literal, a variable reference, an opposite-of/contextual
// reference, or one of the special target-only strings.
type RawValue struct {
	Present bool
	Text    string // textual form, always populated when Present
	IsFloat bool   // true if the YAML node was a bare number (no unit)
	Float   float64
}

// UnmarshalYAML accepts either a scalar number or a scalar string; any
// other node kind is an error, since every declaration-file leaf value
// is one of the two.
func (r *RawValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &yamlShapeError{tag: node.Tag, line: node.Line}
	}
	r.Present = true
	r.Text = node.Value
	if f, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64); err == nil {
		r.IsFloat = true
		r.Float = f
	}
	return nil
}

type yamlShapeError struct {
	tag  string
	line int
}

func (e *yamlShapeError) Error() string {
	return "builder: expected a scalar value at line " + strconv.Itoa(e.line) + ", got " + e.tag
}
