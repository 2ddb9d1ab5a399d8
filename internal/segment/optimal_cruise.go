package segment

// optimalCruisePolicy implements OptimalCruise (spec.md §4.4, §4.7):
// ground_distance stop condition identical to Cruise, but altitude is
// not held constant — it drifts toward the altitude of maximum L/D at
// the current mass as fuel burns off. Modeled as a slow
// proportional tracking climb (gamma proportional to the gap between
// current and instantaneous-optimal altitude) rather than an exact
// closed-form cruise-climb solution, since the true optimum path
// itself depends on the burn rate this same step is computing.
type optimalCruisePolicy struct {
	base cruisePolicy
}

func (optimalCruisePolicy) Regulated() bool { return true }

func (p optimalCruisePolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	optAlt, err := optimalAltitudeFor(fp, desc)
	if err != nil || fp.TrueAirspeed <= 0 {
		return 0, 0
	}
	const trackingTime = 600.0 // s, time constant to close the altitude gap
	gamma := clamp((optAlt-fp.Altitude)/(fp.TrueAirspeed*trackingTime), -0.02, 0.02)
	return gamma, 0
}

func (p optimalCruisePolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	return p.base.DistanceToTarget(fp, desc)
}

func (optimalCruisePolicy) Tolerance(desc Descriptor) float64 { return 1.0 }

func (optimalCruisePolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool {
	return fp.Mach > 1.0 || fp.Thrust <= 0
}

// NewOptimalCruise builds the Descriptor/Policy pair for an
// OptimalCruise segment. The target must hold a speed field (mach or
// airspeed) constant; altitude is left to drift.
func NewOptimalCruise(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindOptimalCruise
	return desc, optimalCruisePolicy{base: cruisePolicy{targetField: "ground_distance"}}
}

// InitialOptimalCruiseAltitude resolves the cruise-entry altitude for
// an OptimalCruise segment: the altitude of maximum L/D at the mass
// entering cruise (spec.md §4.7).
func InitialOptimalCruiseAltitude(entry FlightPoint, desc Descriptor) (float64, error) {
	return optimalAltitudeFor(entry, desc)
}
