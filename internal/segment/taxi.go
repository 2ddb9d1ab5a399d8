package segment

// taxiPolicy implements Policy for Taxi (spec.md §4.4): gamma=0, a=0,
// airspeed held fixed at the start value; thrust rate is manual
// (idle/taxi power).
type taxiPolicy struct{}

func (taxiPolicy) Regulated() bool { return false }

func (taxiPolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	return 0, 0
}

func (taxiPolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	target, ok := desc.Target.Resolve("time", fp)
	if !ok {
		return 0, nil
	}
	return target - fp.Time, nil
}

func (taxiPolicy) Tolerance(desc Descriptor) float64 { return 0.5 }

func (taxiPolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool { return false }

// NewTaxi builds the Descriptor/Policy pair for a Taxi segment.
func NewTaxi(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindTaxi
	return desc, taxiPolicy{}
}
