package segment

import "github.com/avmission/missionperf/internal/flightpoint"

// RunMassInput executes a MassInput segment: binds the mission's
// input mass variable into the flight-point stream (spec.md §3, §4.8).
// It performs no integration of its own; the driver is responsible for
// resolving the mass value from the variable store before calling
// this, and for validating that every segment preceding it has
// mass-independent fuel consumption (spec.md §4.8 step 3).
func RunMassInput(start FlightPoint, desc Descriptor, mass float64) Trace {
	end := start.Clone()
	end.Mass = mass
	end.Name = desc.Name
	return Trace{Points: []FlightPoint{start, end}}
}

// RunStart builds the initial FlightPoint of a mission from an
// explicit declaration (spec.md §3's Start segment kind): altitude,
// mach, true_airspeed, equivalent_airspeed and mass given in the target
// are taken literally; time, ground_distance and consumed_fuel start at
// zero; everything else stays unset.
func RunStart(desc Descriptor) Trace {
	fp := newUnsetFlightPoint()
	fp.Name = desc.Name
	fp.Time = 0
	fp.GroundDistance = 0
	fp.ConsumedFuel = 0
	fp.ISAOffset = desc.ISAOffset

	for _, field := range []string{"altitude", "mach", "true_airspeed", "equivalent_airspeed", "mass"} {
		if v, ok := desc.Target.Resolve(field, fp); ok {
			setStartField(&fp, field, v)
		}
	}
	return Trace{Points: []FlightPoint{fp}}
}

func setStartField(fp *FlightPoint, name string, v float64) {
	switch name {
	case "altitude":
		fp.Altitude = v
	case "mach":
		fp.Mach = v
	case "true_airspeed":
		fp.TrueAirspeed = v
	case "equivalent_airspeed":
		fp.EquivalentAirspeed = v
	case "mass":
		fp.Mass = v
	}
}

func newUnsetFlightPoint() FlightPoint {
	return flightpoint.New()
}
