package polar

import (
	"math"

	"github.com/avmission/missionperf/internal/flightpoint"
)

// GroundEffectModifier returns a Modifier implementing the closed-form
// multiplicative reduction of induced drag in ground effect (spec.md
// §4.2): parameterized by wing span, landing-gear height, the polar's
// induced-drag coefficient k (CD_induced = k * CL^2) and a winglet
// factor, applied while the aircraft is below a few spans of altitude
// above the ground.
func GroundEffectModifier(wingSpan, gearHeight, inducedDragCoeff, wingletFactor, groundElevation float64) Modifier {
	return func(cl float64, fp flightpoint.FlightPoint) float64 {
		heightAboveGround := fp.Altitude - groundElevation + gearHeight
		if heightAboveGround <= 0 || !flightpoint.IsSet(fp.Altitude) {
			heightAboveGround = gearHeight
		}

		// Wieselsberger-style ground-effect factor: induced drag drops
		// off as a function of height-to-span ratio, damped by the
		// winglet factor (winglets reduce the effective span efficiency
		// gain from ground proximity).
		hOverB := heightAboveGround / wingSpan
		if hOverB > 5 {
			return 0 // effect is negligible beyond ~5 spans
		}
		phi := (16 * hOverB) * (16 * hOverB) / (1 + (16*hOverB)*(16*hOverB))
		inducedFull := inducedDragCoeff * cl * cl
		reduction := inducedFull * (1 - phi) * wingletFactor
		return -math.Max(0, reduction)
	}
}
