// Package flightpoint defines the FlightPoint value record (spec.md
// §3, component B): the full state of the aircraft at one simulated
// instant, open to runtime-declared extension fields.
//
// Generalized from the teacher's JSON-tagged AircraftState struct
// (aircraft_state.go) — a fixed set of named fields plus an embedded
// map for anything ad hoc — into a compile-time record plus a
// side-table of extras, as spec.md §9's Design Notes call for.
package flightpoint

import "math"

// Unset is the sentinel carried by any field that has not been
// produced yet.
var Unset = math.NaN()

// FlightPoint is the open record of spec.md §3. All fields are SI.
type FlightPoint struct {
	Time                float64
	Altitude            float64
	GroundDistance      float64
	Mass                float64
	TrueAirspeed        float64
	EquivalentAirspeed  float64
	Mach                float64
	Alpha               float64
	SlopeAngle          float64
	Acceleration        float64
	Thrust              float64
	ThrustRate          float64
	ThrustIsRegulated   bool
	SFC                 float64
	Drag                float64
	Lift                float64
	CL                  float64
	CD                  float64
	ConsumedFuel        float64
	Name                string
	ISAOffset           float64

	// Extras holds runtime-declared extension fields, keyed by the
	// name they were registered under.
	Extras map[string]float64
}

// New returns a FlightPoint with every numeric field set to Unset and
// every registered extra field set to its declared default.
func New() FlightPoint {
	fp := FlightPoint{
		Time: Unset, Altitude: Unset, GroundDistance: Unset, Mass: Unset,
		TrueAirspeed: Unset, EquivalentAirspeed: Unset, Mach: Unset,
		Alpha: Unset, SlopeAngle: Unset, Acceleration: Unset,
		Thrust: Unset, ThrustRate: Unset, SFC: Unset,
		Drag: Unset, Lift: Unset, CL: Unset, CD: Unset,
		ConsumedFuel: Unset, ISAOffset: Unset,
		Extras: make(map[string]float64, len(extraFields)),
	}
	for name, f := range extraFields {
		fp.Extras[name] = f.Default
	}
	return fp
}

// Clone returns a deep copy (Extras is its own map).
func (fp FlightPoint) Clone() FlightPoint {
	out := fp
	out.Extras = make(map[string]float64, len(fp.Extras))
	for k, v := range fp.Extras {
		out.Extras[k] = v
	}
	return out
}

// IsSet reports whether v is not the Unset sentinel.
func IsSet(v float64) bool {
	return !math.IsNaN(v)
}

// Extra returns a declared extension field's value, or Unset if the
// field was never registered.
func (fp FlightPoint) Extra(name string) float64 {
	if v, ok := fp.Extras[name]; ok {
		return v
	}
	return Unset
}

// SetExtra sets a declared extension field's value.
func (fp *FlightPoint) SetExtra(name string, value float64) {
	if fp.Extras == nil {
		fp.Extras = make(map[string]float64)
	}
	fp.Extras[name] = value
}

// ContinuityFields are the fields the mission driver checks for
// exact equality between the last point of part k and the first
// point of part k+1 (spec.md §3 invariants, §5 ordering guarantees).
type ContinuityFields struct {
	Time, GroundDistance, Altitude, Mass, ConsumedFuel, TrueAirspeed float64
}

// Continuity extracts the fields checked for segment-to-segment
// continuity.
func (fp FlightPoint) Continuity() ContinuityFields {
	return ContinuityFields{
		Time:           fp.Time,
		GroundDistance: fp.GroundDistance,
		Altitude:       fp.Altitude,
		Mass:           fp.Mass,
		ConsumedFuel:   fp.ConsumedFuel,
		TrueAirspeed:   fp.TrueAirspeed,
	}
}

// Equal reports exact equality of the continuity fields (spec.md
// testable property 4); two unset (NaN) values count as equal.
func (a ContinuityFields) Equal(b ContinuityFields) bool {
	same := func(x, y float64) bool { return x == y || (math.IsNaN(x) && math.IsNaN(y)) }
	return same(a.Time, b.Time) && same(a.GroundDistance, b.GroundDistance) &&
		same(a.Altitude, b.Altitude) && same(a.Mass, b.Mass) &&
		same(a.ConsumedFuel, b.ConsumedFuel) && same(a.TrueAirspeed, b.TrueAirspeed)
}
