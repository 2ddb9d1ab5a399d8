package segment

import (
	"fmt"
	"math"
)

// groundSpeedChangePolicy implements GroundSpeedChange (spec.md §4.5):
// wheel friction mu*(m*g - L) is added to drag, thrust at a given
// rate, gamma=0. Stops when the target airspeed is reached or the
// true airspeed returns to zero (rejected takeoff).
type groundSpeedChangePolicy struct{}

func (groundSpeedChangePolicy) Regulated() bool { return false }

func (groundSpeedChangePolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	if fp.Mass <= 0 {
		return 0, 0
	}
	weight := fp.Mass * gravity
	normalForce := weight - lift
	if normalForce < 0 {
		normalForce = 0
	}
	friction := desc.FrictionCoeff * normalForce
	totalDrag := drag + friction
	return 0, (fp.Thrust - totalDrag) / fp.Mass
}

func (groundSpeedChangePolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	for _, key := range []string{"true_airspeed", "equivalent_airspeed"} {
		if desc.Target.Has(key) {
			target, _ := desc.Target.Resolve(key, fp)
			return target - speedFieldValue(fp, key), nil
		}
	}
	return 0, fmt.Errorf("GroundSpeedChange: target must specify true_airspeed or equivalent_airspeed")
}

func (groundSpeedChangePolicy) Tolerance(desc Descriptor) float64 { return 0.1 }

func (groundSpeedChangePolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool {
	return fp.TrueAirspeed <= 0 && fp.Time > 0 // rejected takeoff: speed collapsed back to zero
}

// NewGroundSpeedChange builds the Descriptor/Policy pair for a
// GroundSpeedChange segment.
func NewGroundSpeedChange(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindGroundSpeedChange
	return desc, groundSpeedChangePolicy{}
}

// rotationPolicy implements Rotation (spec.md §4.5): pitches alpha at
// a constant rotation rate from the current value to alpha_limit;
// lift uses the polar evaluated at current alpha rather than CL, via
// the alpha-indexed interpolation mode the polar exposes (here the CL
// produced from the alpha ramp is threaded straight through, since the
// kernel's Polar.CDAt already accepts an arbitrary CL value).
type rotationPolicy struct{}

func (rotationPolicy) Regulated() bool { return false }

func (rotationPolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	if fp.Mass <= 0 {
		return 0, 0
	}
	return 0, (fp.Thrust - drag) / fp.Mass
}

func (rotationPolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	return desc.AlphaLimit - fp.Alpha, nil
}

func (rotationPolicy) Tolerance(desc Descriptor) float64 { return 0.001 }

func (rotationPolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool { return false }

// NewRotation builds the Descriptor/Policy pair for a Rotation
// segment. The policy's tolerance/unfeasible hooks only watch alpha;
// the mission runner executes Rotation through RunRotation
// (takeoff.go), which ramps fp.Alpha at desc.RotationRate itself.
func NewRotation(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindRotation
	return desc, rotationPolicy{}
}

// AdvanceAlpha steps fp.Alpha toward desc.AlphaLimit at desc.RotationRate
// over dt seconds, clamped at the limit.
func AdvanceAlpha(fp FlightPoint, desc Descriptor, dt float64) FlightPoint {
	next := fp.Clone()
	step := desc.RotationRate * dt
	if fp.Alpha+step > desc.AlphaLimit {
		next.Alpha = desc.AlphaLimit
	} else {
		next.Alpha = fp.Alpha + step
	}
	return next
}

// endOfTakeoffPolicy implements EndOfTakeoff (spec.md §4.5): free-flight
// climb to a delta_altitude target (typically 35 ft) with gamma from
// vertical-force balance and a fine time step.
type endOfTakeoffPolicy struct{}

func (endOfTakeoffPolicy) Regulated() bool { return false }

func (endOfTakeoffPolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	if fp.Mass <= 0 || fp.TrueAirspeed <= 0 {
		return 0, 0
	}
	weight := fp.Mass * gravity
	verticalForce := lift - weight*math.Cos(fp.SlopeAngle)
	gamma := math.Asin(clamp(verticalForce/weight, -0.3, 0.3))
	accel := (fp.Thrust - drag) / fp.Mass
	return gamma, accel
}

func (endOfTakeoffPolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	target, ok := desc.Target.Resolve("altitude", fp)
	if !ok {
		return 0, fmt.Errorf("EndOfTakeoff: target must specify delta_altitude")
	}
	return target - fp.Altitude, nil
}

func (endOfTakeoffPolicy) Tolerance(desc Descriptor) float64 { return 0.05 }

func (endOfTakeoffPolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool {
	return fp.SlopeAngle < 0
}

// NewEndOfTakeoff builds the Descriptor/Policy pair for an
// EndOfTakeoff segment. TimeStep is capped at 0.05s (and set to 0.05s
// when unset) per spec.md §4.5.
func NewEndOfTakeoff(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindEndOfTakeoff
	if desc.TimeStep > 0.05 || desc.TimeStep == 0 {
		desc.TimeStep = 0.05
	}
	return desc, endOfTakeoffPolicy{}
}
