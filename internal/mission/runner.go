// Package mission implements components F, G and H of spec.md §2:
// Phase (ordered composition of segments), Route (climb/cruise/descent
// with a distance-matching cruise solver) and the top-level Mission
// driver.
package mission

import (
	"fmt"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/missionerr"
	"github.com/avmission/missionperf/internal/propulsion"
	"github.com/avmission/missionperf/internal/segment"
)

// Totals is the per-part aggregation of spec.md §3: distance, duration
// and fuel consumed by one mission part.
type Totals struct {
	Distance float64
	Duration float64
	Fuel     float64
}

// Runner is anything that can be executed from a start FlightPoint and
// produce a trace: a segment, a phase, or (indirectly) a route.
type Runner interface {
	RunFrom(start flightpoint.FlightPoint, prop propulsion.Model) (segment.Trace, error)
	PartName() string
}

// SegmentRunner wraps one Descriptor/Policy pair (or the special kinds
// that bypass the generic time-step loop) behind the Runner interface.
type SegmentRunner struct {
	Desc     segment.Descriptor
	Policy   segment.Policy // nil for Transition/MassInput/Start/Rotation/Takeoff
	Rotation *segment.Descriptor
	EOT      *segment.Descriptor
	MassFn   func() (float64, error) // resolves the bound mass, for MassInput
}

func (r SegmentRunner) PartName() string { return r.Desc.Name }

func (r SegmentRunner) RunFrom(start flightpoint.FlightPoint, prop propulsion.Model) (segment.Trace, error) {
	switch r.Desc.Kind {
	case segment.KindTransition:
		return segment.RunTransition(start, r.Desc)
	case segment.KindMassInput:
		mass, err := r.MassFn()
		if err != nil {
			return segment.Trace{}, missionerr.Wrap(missionerr.UnresolvedVariable, r.Desc.Name, "mass input variable unresolved", err)
		}
		return segment.RunMassInput(start, r.Desc, mass), nil
	case segment.KindStart:
		return segment.RunStart(r.Desc), nil
	case segment.KindRotation:
		return segment.RunRotation(start, r.Desc, prop)
	default:
		if r.Policy == nil {
			return segment.Trace{}, fmt.Errorf("mission: segment kind %s has no policy wired", r.Desc.Kind)
		}
		return segment.Run(start, r.Desc, r.Policy, prop)
	}
}

// TakeoffRunner wraps the three-sub-segment Takeoff composite (spec.md
// §4.5).
type TakeoffRunner struct {
	Name               string
	Ground, Rotation, EOT segment.Descriptor
}

func (r TakeoffRunner) PartName() string { return r.Name }

func (r TakeoffRunner) RunFrom(start flightpoint.FlightPoint, prop propulsion.Model) (segment.Trace, error) {
	return segment.RunTakeoff(start, r.Ground, r.Rotation, r.EOT, prop)
}
