package segment

import (
	"fmt"
	"math"

	"github.com/avmission/missionperf/internal/atmosphere"
)

// OptimalFlightLevelTolerance is the L/D tolerance (open question 1)
// used to decide whether the 2000 ft grid rounds down or up: down
// unless that costs more than this fraction of optimum L/D.
const OptimalFlightLevelTolerance = 0.01

const flightLevelStep = 609.6 // 2000 ft in meters

// altitudeChangePolicy implements Policy for the AltitudeChange kind
// (spec.md §4.4): manual thrust rate, gamma free, solved from the
// excess-power relation a = (T-D)/m - g*sin(gamma) with gamma chosen so
// the kinematic closure x-dot=V cos(gamma), h-dot=V sin(gamma) holds;
// here gamma is obtained directly from the rate of climb implied by
// excess thrust power. With an airspeed target, speed is held (a=0) and
// all excess power goes into climb; without one, 70% goes into climb
// and the remaining 30% of excess thrust accelerates the aircraft.
type altitudeChangePolicy struct {
	holdAirspeed bool // true if a speed field also appears in target (gamma!=0, V held)
}

func (altitudeChangePolicy) Regulated() bool { return false }

func (p altitudeChangePolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	if !flightpointIsSet(fp.TrueAirspeed) || fp.TrueAirspeed <= 0 || fp.Mass <= 0 {
		return 0, 0
	}
	excessPower := (fp.Thrust - drag) * fp.TrueAirspeed
	weight := fp.Mass * gravity
	if p.holdAirspeed {
		// Speed held constant: all excess power goes into climb rate.
		rateOfClimb := excessPower / weight
		gamma := math.Asin(clamp(rateOfClimb/fp.TrueAirspeed, -1, 1))
		return gamma, 0
	}
	// Otherwise climb at a modest fixed flight-path angle driven by
	// excess thrust, with any leftover accelerating the aircraft.
	const climbFraction = 0.7
	rateOfClimb := climbFraction * excessPower / weight
	gamma := math.Asin(clamp(rateOfClimb/fp.TrueAirspeed, -1, 1))
	accel := (1 - climbFraction) * (fp.Thrust - drag) / fp.Mass
	return gamma, accel
}

func (altitudeChangePolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	if f, ok := desc.Target["altitude"]; ok {
		switch f.Kind {
		case OptimalAltitude, OptimalFlightLevel:
			target, err := optimalAltitudeFor(fp, desc)
			if err != nil {
				return 0, err
			}
			return target - fp.Altitude, nil
		default:
			target, _ := desc.Target.Resolve("altitude", fp)
			return target - fp.Altitude, nil
		}
	}
	for _, key := range []string{"mach", "true_airspeed", "equivalent_airspeed"} {
		if desc.Target.Has(key) {
			target, _ := desc.Target.Resolve(key, fp)
			return target - speedFieldValue(fp, key), nil
		}
	}
	return 0, fmt.Errorf("AltitudeChange: target must specify altitude or an airspeed")
}

func (altitudeChangePolicy) Tolerance(desc Descriptor) float64 { return 1.0 }

func (altitudeChangePolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool {
	return fp.Mach > 1.2 || (flightpointIsSet(fp.SlopeAngle) && fp.SlopeAngle < 0 && desc.EngineSetting == ClimbSetting())
}

func ClimbSetting() EngineSetting { return Climb }

func speedFieldValue(fp FlightPoint, name string) float64 {
	switch name {
	case "mach":
		return fp.Mach
	case "true_airspeed":
		return fp.TrueAirspeed
	case "equivalent_airspeed":
		return fp.EquivalentAirspeed
	}
	return math.NaN()
}

// NewAltitudeChange builds the Descriptor/Policy pair for an
// AltitudeChange segment.
func NewAltitudeChange(desc Descriptor) (Descriptor, Policy) {
	holdSpeed := desc.Target.Has("mach") || desc.Target.Has("true_airspeed") || desc.Target.Has("equivalent_airspeed")
	desc.Kind = KindAltitudeChange
	return desc, altitudeChangePolicy{holdAirspeed: holdSpeed}
}

// optimalAltitudeFor resolves the "optimal_altitude"/"optimal_flight_level"
// target token: the altitude maximizing L/D at the flight point's
// current mass and held airspeed (spec.md §4.4's flight-level
// rounding rule).
func optimalAltitudeFor(fp FlightPoint, desc Descriptor) (float64, error) {
	speedKey, speedVal := "", 0.0
	for _, key := range []string{"mach", "true_airspeed", "equivalent_airspeed"} {
		if desc.Target.Has(key) {
			v, _ := desc.Target.Resolve(key, fp)
			speedKey, speedVal = key, v
			break
		}
	}
	if speedKey == "" {
		return 0, fmt.Errorf("AltitudeChange: optimal_altitude target requires a held airspeed field")
	}

	evalCL := func(h float64) (float64, error) {
		atmo, err := atmosphere.At(h, desc.ISAOffset)
		if err != nil {
			return 0, err
		}
		var v float64
		switch speedKey {
		case "mach":
			v = atmo.TASFromMach(speedVal)
		case "true_airspeed":
			v = speedVal
		case "equivalent_airspeed":
			v = atmo.TASFromEAS(speedVal)
		}
		q := 0.5 * atmo.Density * v * v
		if q <= 0 {
			return 0, fmt.Errorf("non-positive dynamic pressure at altitude %g", h)
		}
		return (fp.Mass * gravity) / (q * desc.WingArea), nil
	}

	target := fp
	optimum := desc.Polar.OptimumCL(target)

	lo, hi := 100.0, 20000.0
	f := func(h float64) (float64, error) {
		cl, err := evalCL(h)
		if err != nil {
			return 0, err
		}
		return cl - optimum, nil
	}
	fLo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fHi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if fLo*fHi > 0 {
		// No sign change in the bracket: return the endpoint closer
		// to the optimum rather than failing the segment outright.
		if math.Abs(fLo) < math.Abs(fHi) {
			return lo, nil
		}
		return hi, nil
	}
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		fMid, err := f(mid)
		if err != nil {
			return 0, err
		}
		if fLo*fMid <= 0 {
			hi = mid
			fHi = fMid
		} else {
			lo = mid
			fLo = fMid
		}
		if hi-lo < 1.0 {
			break
		}
	}
	optAlt := (lo + hi) / 2

	if f, ok := desc.Target["altitude"]; ok && f.Kind == OptimalFlightLevel {
		return roundToFlightLevel(optAlt, fp, desc, evalCL, optimum), nil
	}
	return optAlt, nil
}

// roundToFlightLevel rounds the continuous optimum altitude down to
// the nearest 2000 ft multiple, or up if that loses more than
// OptimalFlightLevelTolerance of the optimum L/D (spec.md §4.4,
// open question 1).
func roundToFlightLevel(optAlt float64, fp FlightPoint, desc Descriptor, evalCL func(float64) (float64, error), optimumCL float64) float64 {
	down := math.Floor(optAlt/flightLevelStep) * flightLevelStep
	up := down + flightLevelStep

	ldAt := func(h float64) float64 {
		cl, err := evalCL(h)
		if err != nil {
			return -math.MaxFloat64
		}
		return cl / desc.Polar.CDAt(cl, fp)
	}
	ldOptimum := ldAt(optAlt)
	ldDown := ldAt(down)
	ldUp := ldAt(up)

	if ldOptimum <= 0 {
		return down
	}
	lossDown := (ldOptimum - ldDown) / ldOptimum
	if lossDown <= OptimalFlightLevelTolerance {
		return down
	}
	if ldUp > ldDown {
		return up
	}
	return down
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
