package segment

import (
	"github.com/avmission/missionperf/internal/atmosphere"
	"github.com/avmission/missionperf/internal/missionerr"
)

// RunTransition executes a Transition (macroscopic) segment (spec.md
// §4.6): a single discrete jump applying mass_ratio and the target's
// end altitude/mach/true_airspeed/delta_ground_distance fields. Emits
// exactly two points (start, end).
func RunTransition(start FlightPoint, desc Descriptor) (Trace, error) {
	end := start.Clone()

	if desc.MassRatio > 0 {
		end.Mass = desc.MassRatio * start.Mass
	}
	if desc.ReserveMassRatio > 0 {
		end.Mass -= desc.ReserveMassRatio * start.Mass
	}
	consumed := start.Mass - end.Mass
	if consumed < 0 {
		consumed = 0
	}
	end.ConsumedFuel = start.ConsumedFuel + consumed

	if v, ok := desc.Target.Resolve("altitude", start); ok {
		end.Altitude = v
	}
	if v, ok := desc.Target.Resolve("ground_distance", start); ok {
		end.GroundDistance = v
	}

	atmo, err := atmosphere.At(end.Altitude, desc.ISAOffset)
	if err != nil {
		return Trace{}, missionerr.Wrap(missionerr.Unfeasible, desc.Name, "atmosphere lookup failed", err)
	}

	switch {
	case desc.Target.Has("mach"):
		v, _ := desc.Target.Resolve("mach", start)
		end.Mach = v
		end.TrueAirspeed = atmo.TASFromMach(v)
		end.EquivalentAirspeed = atmo.EASFromTAS(end.TrueAirspeed)
	case desc.Target.Has("true_airspeed"):
		v, _ := desc.Target.Resolve("true_airspeed", start)
		end.TrueAirspeed = v
		end.Mach = atmo.Mach(v)
		end.EquivalentAirspeed = atmo.EASFromTAS(v)
	}

	// The transition takes no simulated time of its own beyond a
	// nominal step, consistent with being a single discrete jump;
	// time/distance bookkeeping for the ground_distance delta is
	// already folded into the target resolution above.
	end.Name = desc.Name
	end.ISAOffset = desc.ISAOffset

	return Trace{Points: []FlightPoint{start, end}}, nil
}
