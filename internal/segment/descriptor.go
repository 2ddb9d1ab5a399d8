package segment

import (
	"go.uber.org/zap"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/polar"
	"github.com/avmission/missionperf/internal/propulsion"
)

// FlightPoint is a local alias so per-kind files read naturally.
type FlightPoint = flightpoint.FlightPoint

// EngineSetting is the coarse power-lever setting a segment runs at
// (spec.md §3).
type EngineSetting string

const (
	Takeoff EngineSetting = "Takeoff"
	Climb   EngineSetting = "Climb"
	Cruise  EngineSetting = "Cruise"
	Idle    EngineSetting = "Idle"
)

// Kind tags the segment variant (spec.md §3's tagged variant).
type Kind string

const (
	KindAltitudeChange    Kind = "AltitudeChange"
	KindSpeedChange       Kind = "SpeedChange"
	KindCruise            Kind = "Cruise"
	KindOptimalCruise     Kind = "OptimalCruise"
	KindHold              Kind = "Hold"
	KindTaxi              Kind = "Taxi"
	KindGroundSpeedChange Kind = "GroundSpeedChange"
	KindRotation          Kind = "Rotation"
	KindEndOfTakeoff      Kind = "EndOfTakeoff"
	KindTransition        Kind = "Transition"
	KindStart             Kind = "Start"
	KindMassInput         Kind = "MassInput"
)

// Descriptor is the value type of spec.md §3: the fields common to
// every segment kind, inherited from the enclosing phase/route/mission
// unless overridden (spec.md §6.1).
type Descriptor struct {
	Kind Kind
	Name string

	EngineSetting         EngineSetting
	Polar                 *polar.Polar
	WingArea              float64 // S_ref, m^2
	ThrustRate            float64 // used when target does not drive regulated thrust
	Target                Target
	TimeStep              float64 // s
	InterruptIfUnfeasible bool
	WarnOnSaturation      bool // open question 2: saturation never errors; a warning is logged only when true (false unless declared)
	Logger                *zap.SugaredLogger
	ISAOffset             float64
	MaxSteps              int     // default 10,000 (spec.md §5)
	MaximumCL             float64 // NaN if unset

	// Transition-only fields.
	MassRatio        float64
	ReserveMassRatio float64

	// Takeoff-sub-segment fields.
	FrictionCoeff float64 // mu, GroundSpeedChange
	RotationRate  float64 // rad/s, Rotation
	AlphaLimit    float64 // rad, Rotation
}

// Propulsion groups the collaborators every time-step segment needs.
type Propulsion = propulsion.Model

const DefaultMaxSteps = 10000

func (d Descriptor) maxSteps() int {
	if d.MaxSteps > 0 {
		return d.MaxSteps
	}
	return DefaultMaxSteps
}
