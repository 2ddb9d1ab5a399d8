package segment

// cruisePolicy implements Policy for Cruise and Hold (spec.md §4.4):
// regulated thrust, gamma=0, a=0 — equilibrium flight.
type cruisePolicy struct {
	targetField string // "ground_distance" for Cruise, "time" for Hold
}

func (cruisePolicy) Regulated() bool { return true }

func (cruisePolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	return 0, 0
}

func (p cruisePolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	target, ok := desc.Target.Resolve(p.targetField, fp)
	if !ok {
		// Cruise: ground_distance target is set by the route solver,
		// not the declaration (spec.md §4.7); a segment run standalone
		// (e.g. in a unit test) with no target residual is already at
		// its stop condition.
		return 0, nil
	}
	return target - fieldValue(fp, p.targetField), nil
}

func (cruisePolicy) Tolerance(desc Descriptor) float64 { return 1.0 }

func (cruisePolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool {
	return fp.Mach > 1.0 || fp.Thrust <= 0
}

// NewCruise builds the Descriptor/Policy pair for a Cruise segment.
// The ground_distance target is expected to be filled in by the route
// solver (spec.md §4.7) before Run is called.
func NewCruise(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindCruise
	return desc, cruisePolicy{targetField: "ground_distance"}
}

// NewHold builds the Descriptor/Policy pair for a Hold segment.
func NewHold(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindHold
	return desc, cruisePolicy{targetField: "time"}
}
