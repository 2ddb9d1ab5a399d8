// Package segment implements the time-step flight-segment integrators
// of spec.md §4.4-§4.6 (component E) — the largest, most
// tightly-coupled subsystem of the mission engine (~30% of the
// engineering share).
//
// The shared time-step loop is a generic function parameterized over a
// small per-kind policy, generalizing the teacher's pluggable
// Integrator interface (integration_engine.go, EulerIntegrator /
// RungeKutta4Integrator) from "pluggable numerical method" to
// "pluggable segment kind", per spec.md §9's Design Notes.
package segment

import "math"

// FieldKind tags how a target field's value should be interpreted.
type FieldKind int

const (
	// Absolute: the field's value is a literal target.
	Absolute FieldKind = iota
	// Delta: the value is relative to the segment's start point.
	Delta
	// Constant: keep the start point's value of this field fixed.
	Constant
	// OptimalAltitude: recompute the target altitude every step as
	// the altitude that maximizes L/D at current mass.
	OptimalAltitude
	// OptimalFlightLevel: like OptimalAltitude (recomputed every step
	// from the current mass), rounded down to the 2000 ft flight-level
	// grid, or up when rounding down loses more than
	// OptimalFlightLevelTolerance of optimum L/D.
	OptimalFlightLevel
)

// Field is one entry of a segment's Target.
type Field struct {
	Kind  FieldKind
	Value float64 // meaningful for Absolute/Delta
}

// Target is the stop-condition record of spec.md §4.4: a set of
// {field -> value|CONSTANT|optimal_altitude|optimal_flight_level}
// entries. Fields absent from the map are "don't care".
type Target map[string]Field

// Resolve returns the absolute SI value target field name should reach,
// given the segment's start point. Constant/Delta targets are resolved
// once against start; OptimalAltitude/OptimalFlightLevel are resolved
// dynamically elsewhere (see altitude_change.go) and Resolve is not
// meaningful for them.
func (t Target) Resolve(name string, start FlightPoint) (float64, bool) {
	f, ok := t[name]
	if !ok {
		return 0, false
	}
	switch f.Kind {
	case Absolute:
		return f.Value, true
	case Delta:
		return fieldValue(start, name) + f.Value, true
	case Constant:
		return fieldValue(start, name), true
	default:
		return 0, false
	}
}

// Has reports whether name is present in the target at all.
func (t Target) Has(name string) bool {
	_, ok := t[name]
	return ok
}

func fieldValue(fp FlightPoint, name string) float64 {
	switch name {
	case "altitude":
		return fp.Altitude
	case "ground_distance":
		return fp.GroundDistance
	case "time":
		return fp.Time
	case "mach":
		return fp.Mach
	case "true_airspeed":
		return fp.TrueAirspeed
	case "equivalent_airspeed":
		return fp.EquivalentAirspeed
	case "mass":
		return fp.Mass
	default:
		return math.NaN()
	}
}
