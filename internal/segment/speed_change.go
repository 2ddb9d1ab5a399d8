package segment

import "fmt"

// speedChangePolicy implements Policy for SpeedChange (spec.md §4.4):
// manual thrust rate, gamma=0, a=(T-D)/m.
type speedChangePolicy struct{}

func (speedChangePolicy) Regulated() bool { return false }

func (speedChangePolicy) GammaAndAcceleration(fp FlightPoint, desc Descriptor, lift, drag float64) (float64, float64) {
	if fp.Mass <= 0 {
		return 0, 0
	}
	return 0, (fp.Thrust - drag) / fp.Mass
}

func (speedChangePolicy) DistanceToTarget(fp FlightPoint, desc Descriptor) (float64, error) {
	for _, key := range []string{"mach", "true_airspeed", "equivalent_airspeed"} {
		if desc.Target.Has(key) {
			target, _ := desc.Target.Resolve(key, fp)
			return target - speedFieldValue(fp, key), nil
		}
	}
	return 0, fmt.Errorf("SpeedChange: target must specify mach, true_airspeed, or equivalent_airspeed")
}

func (speedChangePolicy) Tolerance(desc Descriptor) float64 { return 0.1 }

func (speedChangePolicy) Unfeasible(fp FlightPoint, desc Descriptor) bool {
	return fp.Mach > 1.2
}

// NewSpeedChange builds the Descriptor/Policy pair for a SpeedChange
// segment.
func NewSpeedChange(desc Descriptor) (Descriptor, Policy) {
	desc.Kind = KindSpeedChange
	return desc, speedChangePolicy{}
}
