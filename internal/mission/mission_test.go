package mission

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/polar"
	"github.com/avmission/missionperf/internal/propulsion"
	"github.com/avmission/missionperf/internal/segment"
)

func testPolar(t *testing.T) *polar.Polar {
	p, err := polar.New([]float64{0, 0.5, 1.0}, []float64{0.02, 0.03, 0.06})
	require.NoError(t, err)
	return p
}

// TestMission_SingleCruiseRoute mirrors spec.md §8 scenario S1: one
// cruise segment covering a fixed range, fuel consumption in the
// expected band and strictly decreasing mass.
func TestMission_SingleCruiseRoute(t *testing.T) {
	p := testPolar(t)
	prop, err := propulsion.NewConstantSFC(200000, 1.7e-5)
	require.NoError(t, err)

	start := flightpoint.New()
	start.Time = 0
	start.Altitude = 10668
	start.Mach = 0.78
	start.TrueAirspeed = 0.78 * 295.0
	start.EquivalentAirspeed = start.TrueAirspeed * 0.5
	start.Mass = 70000
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	cruiseDesc := segment.Descriptor{
		Name:      "cruise",
		Polar:     p,
		WingArea:  122.6,
		TimeStep:  60,
		ISAOffset: 0,
		MaximumCL: math.NaN(),
	}
	cruiseDesc, cruisePolicy := segment.NewCruise(cruiseDesc)

	route := &Route{
		Name:             "main",
		Cruise:           cruiseDesc,
		CruisePolicy:     cruisePolicy,
		Range:            3704000,
		DistanceAccuracy: 1000,
	}

	m := &Mission{
		Name:  "S1",
		Parts: []Runner{route},
	}

	res, err := m.Run(start, prop)
	require.NoError(t, err)

	assert.InDelta(t, 6900, res.TotalFuel, 1500)
	assert.Greater(t, res.TotalTime, 0.0)
	assert.Equal(t, 0.0, res.ReserveFuel)

	for i := 1; i < len(res.Points); i++ {
		assert.Less(t, res.Points[i].Mass, res.Points[i-1].Mass)
		assert.GreaterOrEqual(t, res.Points[i].Mass, 0.0)
	}
}

// TestMission_ReserveMultipliesRouteFuel mirrors S3: a reserve part
// must record exactly multiplier * fuel_of(ref_route).
func TestMission_ReserveMultipliesRouteFuel(t *testing.T) {
	p := testPolar(t)
	prop, err := propulsion.NewConstantSFC(200000, 1.7e-5)
	require.NoError(t, err)

	start := flightpoint.New()
	start.Time = 0
	start.Altitude = 10668
	start.Mach = 0.78
	start.TrueAirspeed = 0.78 * 295.0
	start.EquivalentAirspeed = start.TrueAirspeed * 0.5
	start.Mass = 70000
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	cruiseDesc := segment.Descriptor{
		Name:     "cruise",
		Polar:    p,
		WingArea: 122.6,
		TimeStep: 60,
		MaximumCL: math.NaN(),
	}
	cruiseDesc, cruisePolicy := segment.NewCruise(cruiseDesc)
	route := &Route{
		Name:             "main",
		Cruise:           cruiseDesc,
		CruisePolicy:     cruisePolicy,
		Range:            1500 * 1852,
		DistanceAccuracy: 1000,
	}

	m := &Mission{
		Name: "S3",
		Parts: []Runner{
			route,
			ReserveRef{Name: "reserve", RefRoute: "main", Multiplier: 0.05},
		},
	}

	res, err := m.Run(start, prop)
	require.NoError(t, err)

	mainFuel := res.PerPart["main"].Fuel
	assert.InDelta(t, 0.05*mainFuel, res.ReserveFuel, 1e-6)
	assert.InDelta(t, mainFuel+res.ReserveFuel, res.TotalFuel, 1e-6)
}

// TestMission_AdjustFuelSetsBlockFuelAndTOW checks spec.md §4.8's
// block_fuel = total_fuel relation: res.TotalFuel already carries one
// reserve_fuel increment (runOnce), so AdjustFuel must not add a
// second one when deriving BlockFuel.
func TestMission_AdjustFuelSetsBlockFuelAndTOW(t *testing.T) {
	p := testPolar(t)
	prop, err := propulsion.NewConstantSFC(200000, 1.7e-5)
	require.NoError(t, err)

	start := flightpoint.New()
	start.Time = 0
	start.Altitude = 10668
	start.Mach = 0.78
	start.TrueAirspeed = 0.78 * 295.0
	start.EquivalentAirspeed = start.TrueAirspeed * 0.5
	start.Mass = 70000
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	cruiseDesc := segment.Descriptor{
		Name:      "cruise",
		Polar:     p,
		WingArea:  122.6,
		TimeStep:  60,
		MaximumCL: math.NaN(),
	}
	cruiseDesc, cruisePolicy := segment.NewCruise(cruiseDesc)
	route := &Route{
		Name:             "main",
		Cruise:           cruiseDesc,
		CruisePolicy:     cruisePolicy,
		Range:            1500 * 1852,
		DistanceAccuracy: 1000,
	}

	m := &Mission{
		Name: "S3b",
		Parts: []Runner{
			route,
			ReserveRef{Name: "reserve", RefRoute: "main", Multiplier: 0.05},
		},
		AdjustFuel: true,
		OWE:        40000,
		Payload:    15000,
	}

	res, err := m.Run(start, prop)
	require.NoError(t, err)

	assert.InDelta(t, res.TotalFuel, res.BlockFuel, 1e-6)
	assert.InDelta(t, m.OWE+m.Payload+res.BlockFuel, res.TOW, 1e-6)
}

// TestMission_RouteUnreachable mirrors S5: a range far shorter than
// the climb phase's own distance must fail with RouteUnreachable.
func TestMission_RouteUnreachable(t *testing.T) {
	p := testPolar(t)
	prop, err := propulsion.NewConstantSFC(200000, 1.7e-5)
	require.NoError(t, err)

	start := flightpoint.New()
	start.Time = 0
	start.Altitude = 0
	start.Mach = 0.3
	start.TrueAirspeed = 100
	start.EquivalentAirspeed = 100
	start.Mass = 70000
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	climbDesc := segment.Descriptor{
		Name:     "climb",
		Polar:    p,
		WingArea: 122.6,
		TimeStep: 30,
		MaximumCL: math.NaN(),
		Target: segment.Target{
			"altitude": segment.Field{Kind: segment.Absolute, Value: 10000},
		},
	}
	climbDesc, climbPolicy := segment.NewAltitudeChange(climbDesc)
	climbRunner := SegmentRunner{Desc: climbDesc, Policy: climbPolicy}

	cruiseDesc := segment.Descriptor{
		Name:     "cruise",
		Polar:    p,
		WingArea: 122.6,
		TimeStep: 60,
		MaximumCL: math.NaN(),
	}
	cruiseDesc, cruisePolicy := segment.NewCruise(cruiseDesc)

	route := &Route{
		Name:             "short",
		Climb:            []Runner{climbRunner},
		Cruise:           cruiseDesc,
		CruisePolicy:     cruisePolicy,
		Range:            1852 * 10, // 10 NM, shorter than the climb alone
		DistanceAccuracy: 10,
	}

	m := &Mission{Name: "S5", Parts: []Runner{route}}

	_, err = m.Run(start, prop)
	require.Error(t, err)
}

// TestMission_InvalidStructure checks spec.md §4.8 step 3: a
// mass-dependent segment preceding the mass input must fail fast.
func TestMission_InvalidStructure(t *testing.T) {
	p := testPolar(t)
	prop, err := propulsion.NewConstantSFC(200000, 1.7e-5)
	require.NoError(t, err)

	cruiseDesc := segment.Descriptor{
		Name:     "early_cruise",
		Polar:    p,
		WingArea: 122.6,
		TimeStep: 60,
		MaximumCL: math.NaN(),
		Target: segment.Target{
			"ground_distance": segment.Field{Kind: segment.Absolute, Value: 1000},
		},
	}
	cruiseDesc, cruisePolicy := segment.NewCruise(cruiseDesc)

	m := &Mission{
		Name: "bad",
		Parts: []Runner{
			SegmentRunner{Desc: cruiseDesc, Policy: cruisePolicy},
			SegmentRunner{Desc: segment.Descriptor{Name: "mass_input", Kind: segment.KindMassInput},
				MassFn: func() (float64, error) { return 70000, nil }},
		},
	}

	start := flightpoint.New()
	start.Time, start.Altitude, start.GroundDistance, start.ConsumedFuel = 0, 10668, 0, 0
	start.Mach, start.TrueAirspeed, start.Mass = 0.78, 0.78*295, 70000

	_, err = m.Run(start, prop)
	require.Error(t, err)
}
