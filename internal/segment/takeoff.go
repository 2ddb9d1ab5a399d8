package segment

import (
	"github.com/avmission/missionperf/internal/atmosphere"
	"github.com/avmission/missionperf/internal/missionerr"
)

// liftCurveSlope is the simplified alpha->CL slope (per radian) used
// while the Rotation segment's polar lookup operates in alpha-indexed
// rather than CL-indexed mode (spec.md §4.5).
const liftCurveSlope = 5.5

// RunRotation executes the Rotation segment (spec.md §4.5): pitches
// alpha from the start value to desc.AlphaLimit at desc.RotationRate,
// deriving CL from alpha via liftCurveSlope rather than from the
// vertical-equilibrium relation the generic loop uses, since Rotation
// is explicitly alpha-driven rather than target-driven.
func RunRotation(start FlightPoint, desc Descriptor, prop Propulsion) (Trace, error) {
	trace := Trace{Points: []FlightPoint{start}}
	current := start

	for step := 0; step < desc.maxSteps(); step++ {
		if current.Alpha >= desc.AlphaLimit {
			return trace, nil
		}

		atmo, err := atmosphere.At(current.Altitude, desc.ISAOffset)
		if err != nil {
			return trace, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "atmosphere lookup failed", err)
		}

		dt := desc.TimeStep
		nextAlpha := current.Alpha + desc.RotationRate*dt
		if nextAlpha > desc.AlphaLimit {
			nextAlpha = desc.AlphaLimit
			if desc.RotationRate > 0 {
				dt = (desc.AlphaLimit - current.Alpha) / desc.RotationRate
			}
		}

		v := current.TrueAirspeed
		q := 0.5 * atmo.Density * v * v
		cl := liftCurveSlope * nextAlpha
		cd := desc.Polar.CDAt(cl, current)
		lift := q * desc.WingArea * cl
		drag := q * desc.WingArea * cd

		next := current.Clone()
		next.Alpha = nextAlpha
		next.CL, next.CD, next.Lift, next.Drag = cl, cd, lift, drag
		next.ThrustIsRegulated = false
		next.ThrustRate = desc.ThrustRate
		if err := prop.ComputeFlightPoint(&next); err != nil {
			return trace, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "propulsion query failed", err)
		}

		accel := 0.0
		if current.Mass > 0 {
			accel = (next.Thrust - drag) / current.Mass
		}
		dm := prop.ConsumedMass(next, dt)

		next.Time = current.Time + dt
		next.TrueAirspeed = v + accel*dt
		next.GroundDistance = current.GroundDistance + v*dt
		next.Mass = current.Mass - dm
		next.ConsumedFuel = current.ConsumedFuel + dm
		next.Acceleration = accel
		next.SlopeAngle = 0
		next.Name = desc.Name
		next.ISAOffset = desc.ISAOffset

		newAtmo, err := atmosphere.At(next.Altitude, desc.ISAOffset)
		if err != nil {
			return trace, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "atmosphere lookup failed", err)
		}
		next.EquivalentAirspeed = newAtmo.EASFromTAS(next.TrueAirspeed)
		next.Mach = newAtmo.Mach(next.TrueAirspeed)

		current = next
		trace.Points = append(trace.Points, current)

		if current.Alpha >= desc.AlphaLimit {
			return trace, nil
		}
	}
	return trace, missionerr.New(missionerr.StepLimit, desc.Name, "rotation iteration cap exceeded")
}

// RunTakeoff chains GroundSpeedChange, Rotation and EndOfTakeoff with
// automatic continuity of state (spec.md §4.5's Takeoff composite
// segment).
func RunTakeoff(start FlightPoint, ground, rotation, eot Descriptor, prop Propulsion) (Trace, error) {
	full := Trace{Points: []FlightPoint{start}}

	groundDesc, groundPolicy := NewGroundSpeedChange(ground)
	groundTrace, err := Run(start, groundDesc, groundPolicy, prop)
	if err != nil {
		return full, err
	}
	appendContinuing(&full, groundTrace)

	rotationTrace, err := RunRotation(groundTrace.Last(), rotation, prop)
	if err != nil {
		return full, err
	}
	appendContinuing(&full, rotationTrace)

	eotDesc, eotPolicy := NewEndOfTakeoff(eot)
	eotTrace, err := Run(rotationTrace.Last(), eotDesc, eotPolicy, prop)
	if err != nil {
		return full, err
	}
	appendContinuing(&full, eotTrace)

	return full, nil
}

// appendContinuing appends part's points to full, skipping part's
// first point (which, by construction, equals full's last point).
func appendContinuing(full *Trace, part Trace) {
	if len(part.Points) <= 1 {
		return
	}
	full.Points = append(full.Points, part.Points[1:]...)
}
