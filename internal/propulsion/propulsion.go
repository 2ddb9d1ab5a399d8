// Package propulsion defines the propulsion adapter contract the
// segment-integration kernel consumes (spec.md §4.3, §6.4, component
// D) and a reference constant-SFC implementation so the kernel and its
// tests are runnable standalone.
//
// The struct-with-constructor-and-sensible-defaults idiom is grounded
// on propulsion_system.go's PropulsionSystem/PistonEngine; the duality
// of thrust-rate-given vs thrust-given modes that ComputeFlightPoint
// must respect follows the same file's throttle-vs-manifold-pressure
// handling, generalized to the turbofan-style constant-SFC engine a
// mission study commonly assumes.
package propulsion

import (
	"fmt"

	"github.com/avmission/missionperf/internal/flightpoint"
)

// Model is the external collaborator contract (spec.md §4.3). The core
// only consumes this interface; concrete aircraft propulsion models
// live outside the core.
type Model interface {
	// ComputeFlightPoint fills thrust, thrust_rate and sfc (and fuel
	// flow, if tracked) in place, respecting fp.ThrustIsRegulated: if
	// true, fp.Thrust is taken as given and ThrustRate is filled in;
	// otherwise fp.ThrustRate is taken as given and Thrust is filled
	// in. Must be pure with respect to every other field.
	ComputeFlightPoint(fp *flightpoint.FlightPoint) error

	// ConsumedMass returns the fuel mass (kg) consumed over dt seconds
	// at state fp.
	ConsumedMass(fp flightpoint.FlightPoint, dt float64) float64

	// MaxThrust returns the maximum available thrust (N) at fp, used
	// to clip a regulated-thrust solve.
	MaxThrust(fp flightpoint.FlightPoint) float64
}

// ConstantSFC is a reference Model: thrust is a direct function of
// thrust rate times a fixed max thrust, and specific fuel consumption
// is constant regardless of flight condition. Good enough to drive the
// kernel's own tests and small worked examples (spec.md §8, S1).
type ConstantSFC struct {
	MaxThrustN float64
	SFCValue   float64 // kg / (N*s)
}

// NewConstantSFC builds a ConstantSFC model.
func NewConstantSFC(maxThrustN, sfc float64) (*ConstantSFC, error) {
	if maxThrustN <= 0 {
		return nil, fmt.Errorf("propulsion: MaxThrustN must be positive, got %g", maxThrustN)
	}
	if sfc <= 0 {
		return nil, fmt.Errorf("propulsion: SFCValue must be positive, got %g", sfc)
	}
	return &ConstantSFC{MaxThrustN: maxThrustN, SFCValue: sfc}, nil
}

// MaxThrust implements Model.
func (m *ConstantSFC) MaxThrust(fp flightpoint.FlightPoint) float64 {
	return m.MaxThrustN
}

// ComputeFlightPoint implements Model.
func (m *ConstantSFC) ComputeFlightPoint(fp *flightpoint.FlightPoint) error {
	if fp.ThrustIsRegulated {
		if !flightpoint.IsSet(fp.Thrust) {
			return fmt.Errorf("propulsion: regulated mode requires Thrust to be set")
		}
		if fp.Thrust < 0 {
			fp.Thrust = 0
		}
		if fp.Thrust > m.MaxThrustN {
			fp.Thrust = m.MaxThrustN
		}
		fp.ThrustRate = fp.Thrust / m.MaxThrustN
	} else {
		if !flightpoint.IsSet(fp.ThrustRate) {
			return fmt.Errorf("propulsion: manual mode requires ThrustRate to be set")
		}
		rate := fp.ThrustRate
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		fp.Thrust = rate * m.MaxThrustN
	}
	fp.SFC = m.SFCValue
	return nil
}

// ConsumedMass implements Model: fuel burned is thrust * SFC * dt.
func (m *ConstantSFC) ConsumedMass(fp flightpoint.FlightPoint, dt float64) float64 {
	return fp.Thrust * m.SFCValue * dt
}
