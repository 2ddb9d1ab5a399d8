package flightpoint

import "fmt"

// FieldMeta is the per-field metadata consulted during CSV emission
// and continuity checks (spec.md §9): whether the field accumulates
// across the mission and whether it is written to the output table.
type FieldMeta struct {
	Name       string
	Default    float64
	Cumulative bool
	Output     bool
}

// baseFields is the static, never-mutated-after-init metadata table
// for the fixed record fields, in declaration order (used as the CSV
// column order for base fields).
var baseFields = []FieldMeta{
	{Name: "time", Output: true},
	{Name: "altitude", Output: true},
	{Name: "ground_distance", Cumulative: true, Output: true},
	{Name: "mass", Output: true},
	{Name: "true_airspeed", Output: true},
	{Name: "equivalent_airspeed", Output: true},
	{Name: "mach", Output: true},
	{Name: "alpha", Output: true},
	{Name: "slope_angle", Output: true},
	{Name: "acceleration", Output: true},
	{Name: "thrust", Output: true},
	{Name: "thrust_rate", Output: true},
	{Name: "thrust_is_regulated", Output: true},
	{Name: "sfc", Output: true},
	{Name: "drag", Output: true},
	{Name: "lift", Output: true},
	{Name: "CL", Output: true},
	{Name: "CD", Output: true},
	{Name: "consumed_fuel", Cumulative: true, Output: true},
	{Name: "name", Output: true},
	{Name: "isa_offset", Output: true},
}

// extraFields is the process-wide registry of runtime-declared
// extension fields. It is a static table initialized once at program
// start (here: at first RegisterField call) and never mutated after a
// run begins, per spec.md §9.
var extraFields = map[string]FieldMeta{}
var extraFieldOrder []string

// RegisterField declares a new FlightPoint extension field globally.
// It must be called before any Mission is built; calling it twice for
// the same name is an error.
func RegisterField(name string, defaultValue float64, cumulative, output bool) error {
	if _, exists := extraFields[name]; exists {
		return fmt.Errorf("flightpoint: field %q already registered", name)
	}
	extraFields[name] = FieldMeta{Name: name, Default: defaultValue, Cumulative: cumulative, Output: output}
	extraFieldOrder = append(extraFieldOrder, name)
	return nil
}

// OutputFields returns, in declaration order, the metadata of every
// field (base then extra) whose Output flag is set — the CSV column
// order of spec.md §6.2.
func OutputFields() []FieldMeta {
	out := make([]FieldMeta, 0, len(baseFields)+len(extraFieldOrder))
	for _, f := range baseFields {
		if f.Output {
			out = append(out, f)
		}
	}
	for _, name := range extraFieldOrder {
		if f := extraFields[name]; f.Output {
			out = append(out, f)
		}
	}
	return out
}
