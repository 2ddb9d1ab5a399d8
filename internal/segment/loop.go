package segment

import (
	"math"

	"github.com/avmission/missionperf/internal/atmosphere"
	"github.com/avmission/missionperf/internal/missionerr"
)

const gravity = 9.80665

// Trace is the ordered sequence of FlightPoints a segment emits.
type Trace struct {
	Points []FlightPoint
}

// Last returns the final emitted point.
func (tr Trace) Last() FlightPoint {
	return tr.Points[len(tr.Points)-1]
}

// Policy is the small per-segment-kind capability spec.md §9 calls for:
// the three axes the shared time-step loop is parameterized over
// (distance-to-target, propulsion mode, gamma/acceleration policy).
type Policy interface {
	// Regulated reports whether this kind solves for thrust at
	// force-equilibrium (AbstractRegulatedThrustSegment) rather than
	// taking a given thrust rate (AbstractManualThrustSegment).
	Regulated() bool

	// GammaAndAcceleration is the segment-specific policy of spec.md
	// §4.4 step 4: given the current point (with lift/drag already
	// filled in) it returns flight-path angle and tangential
	// acceleration.
	GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (gamma, accel float64)

	// DistanceToTarget returns the signed residual driving the stop
	// condition (spec.md §4.4's distance_to_target table).
	DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error)

	// Tolerance is the convergence band for |DistanceToTarget|.
	Tolerance(desc Descriptor) float64

	// Unfeasible flags a point the segment cannot continue from (e.g.
	// mach over limit, non-positive climb rate on a climb segment).
	Unfeasible(fp FlightPoint, desc Descriptor) bool
}

// Run executes the shared time-step algorithm of spec.md §4.4 from
// start until policy's stop condition is met, the point becomes
// unfeasible, or the step cap is hit.
func Run(start FlightPoint, desc Descriptor, policy Policy, prop Propulsion) (Trace, error) {
	trace := Trace{Points: []FlightPoint{start}}
	current := start

	// Delta and Constant target fields are fixed against start here, so
	// every step sees them as absolute values.
	resolved := make(Target, len(desc.Target))
	for name, f := range desc.Target {
		if v, ok := desc.Target.Resolve(name, start); ok {
			f = Field{Kind: Absolute, Value: v}
		}
		resolved[name] = f
	}
	desc.Target = resolved

	d0, err := policy.DistanceToTarget(current, desc)
	if err != nil {
		return trace, missionerr.Wrap(missionerr.InvalidDeclaration, desc.Name, "distance_to_target failed at start", err)
	}
	if math.Abs(d0) <= policy.Tolerance(desc) {
		return trace, nil
	}

	for step := 0; step < desc.maxSteps(); step++ {
		tentative, err := advance(current, desc, prop, policy, desc.TimeStep)
		if err != nil {
			return trace, err
		}
		if err := checkMaximumCL(tentative, desc); err != nil {
			return trace, err
		}

		d1, err := policy.DistanceToTarget(tentative, desc)
		if err != nil {
			return trace, missionerr.Wrap(missionerr.InvalidDeclaration, desc.Name, "distance_to_target failed", err)
		}

		if overshoots(d0, d1) {
			dtExact := exactStepSize(desc.TimeStep, d0, d1)
			final, err := advance(current, desc, prop, policy, dtExact)
			if err != nil {
				return trace, err
			}
			if err := checkMaximumCL(final, desc); err != nil {
				return trace, err
			}
			trace.Points = append(trace.Points, final)
			return trace, nil
		}

		current = tentative
		trace.Points = append(trace.Points, current)
		d0 = d1

		if math.Abs(d0) <= policy.Tolerance(desc) {
			return trace, nil
		}

		if policy.Unfeasible(current, desc) {
			if desc.InterruptIfUnfeasible {
				return trace, missionerr.New(missionerr.Unfeasible, desc.Name, "segment became unfeasible")
			}
			return trace, nil
		}
	}

	return trace, missionerr.New(missionerr.StepLimit, desc.Name, "time-step iteration cap exceeded")
}

func checkMaximumCL(fp FlightPoint, desc Descriptor) error {
	if math.IsNaN(desc.MaximumCL) {
		return nil
	}
	if fp.CL > desc.MaximumCL {
		return missionerr.New(missionerr.ClExceeded, desc.Name, "segment step requires CL above maximum_CL")
	}
	return nil
}

// overshoots reports whether the tentative full step crossed the
// target (sign change, or landed past zero).
func overshoots(d0, d1 float64) bool {
	if d1 == 0 {
		return false // exact hit, handled by the tolerance check next loop
	}
	return (d0 > 0 && d1 < 0) || (d0 < 0 && d1 > 0)
}

// exactStepSize performs the linear extrapolation of spec.md §4.4:
// picks dt in (0, dtFull] so the residual reaches zero, assuming it
// varies linearly with dt over the step.
func exactStepSize(dtFull, d0, d1 float64) float64 {
	denom := d0 - d1
	if denom == 0 {
		return dtFull
	}
	dt := dtFull * d0 / denom
	if dt <= 0 {
		return dtFull * 1e-6
	}
	if dt > dtFull {
		return dtFull
	}
	return dt
}

// advance is the forward-Euler integration of spec.md §4.4.
func advance(fp FlightPoint, desc Descriptor, prop Propulsion, policy Policy, dt float64) (FlightPoint, error) {
	atmo, err := atmosphere.At(fp.Altitude, desc.ISAOffset)
	if err != nil {
		return fp, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "atmosphere lookup failed", err)
	}

	v := fp.TrueAirspeed
	if !flightpointIsSet(v) {
		v = 0
	}
	q := 0.5 * atmo.Density * v * v

	gammaPrior := fp.SlopeAngle
	if math.IsNaN(gammaPrior) {
		gammaPrior = 0
	}
	accelPrior := fp.Acceleration
	if math.IsNaN(accelPrior) {
		accelPrior = 0
	}

	var cl, cd, lift, drag float64
	if q > 1e-9 && desc.WingArea > 0 {
		cl = (2*fp.Mass*gravity*math.Cos(gammaPrior))/(q*desc.WingArea) - math.Sin(gammaPrior)*accelPrior/gravity
		cd = desc.Polar.CDAt(cl, fp)
		lift = q * desc.WingArea * cl
		drag = q * desc.WingArea * cd
	}

	next := fp.Clone()
	next.CL, next.CD, next.Lift, next.Drag = cl, cd, lift, drag

	if policy.Regulated() {
		next.ThrustIsRegulated = true
		gamma, accel := policy.GammaAndAcceleration(next, desc, lift, drag)
		demanded := drag + fp.Mass*gravity*math.Sin(gamma)
		next.Thrust = demanded
		if err := prop.ComputeFlightPoint(&next); err != nil {
			return fp, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "propulsion query failed", err)
		}
		if maxThrust := prop.MaxThrust(next); desc.WarnOnSaturation && desc.Logger != nil && (demanded > maxThrust || demanded < 0) {
			desc.Logger.Warnw("regulated thrust saturated",
				"segment", desc.Name, "demanded_thrust", demanded, "max_thrust", maxThrust)
		}
		next.SlopeAngle, next.Acceleration = gamma, accel
	} else {
		next.ThrustIsRegulated = false
		next.ThrustRate = desc.ThrustRate
		if err := prop.ComputeFlightPoint(&next); err != nil {
			return fp, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "propulsion query failed", err)
		}
		gamma, accel := policy.GammaAndAcceleration(next, desc, lift, drag)
		next.SlopeAngle, next.Acceleration = gamma, accel
	}

	dm := prop.ConsumedMass(next, dt)
	if dm < 0 {
		dm = 0
	}

	newV := v + next.Acceleration*dt
	newAlt := fp.Altitude + v*math.Sin(next.SlopeAngle)*dt
	newX := fp.GroundDistance + v*math.Cos(next.SlopeAngle)*dt
	newMass := fp.Mass - dm

	newAtmo, err := atmosphere.At(newAlt, desc.ISAOffset)
	if err != nil {
		return fp, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "atmosphere lookup failed after step", err)
	}

	next.Time = fp.Time + dt
	next.Altitude = newAlt
	next.GroundDistance = newX
	next.Mass = newMass
	next.TrueAirspeed = newV
	next.EquivalentAirspeed = newAtmo.EASFromTAS(newV)
	next.Mach = newAtmo.Mach(newV)
	next.ConsumedFuel = fp.ConsumedFuel + dm
	next.ISAOffset = desc.ISAOffset
	next.Name = desc.Name

	return next, nil
}

func flightpointIsSet(v float64) bool {
	return !math.IsNaN(v)
}
