package segment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/polar"
	"github.com/avmission/missionperf/internal/propulsion"
)

func testPolar(t *testing.T) *polar.Polar {
	p, err := polar.New([]float64{0, 0.5, 1.0}, []float64{0.02, 0.03, 0.06})
	require.NoError(t, err)
	return p
}

func TestCruise_ReachesGroundDistanceTarget(t *testing.T) {
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

	desc := Descriptor{
		Name:      "cruise",
		Polar:     p,
		WingArea:  122.6,
		TimeStep:  60,
		ISAOffset: 0,
		MaximumCL: math.NaN(),
		Target: Target{
			"ground_distance": Field{Kind: Absolute, Value: 3704000},
		},
	}
	desc, policy := NewCruise(desc)

	trace, err := Run(start, desc, policy, prop)
	require.NoError(t, err)
	last := trace.Last()

	assert.InDelta(t, 3704000, last.GroundDistance, desc.TimeStep*last.TrueAirspeed+1)
	assert.Less(t, last.Mass, start.Mass)
	assert.GreaterOrEqual(t, last.ConsumedFuel, 0.0)

	// Testable properties 1-3.
	for i := 1; i < len(trace.Points); i++ {
		prev, cur := trace.Points[i-1], trace.Points[i]
		assert.GreaterOrEqual(t, cur.Time, prev.Time)
		assert.GreaterOrEqual(t, cur.ConsumedFuel, prev.ConsumedFuel)
		massDelta := prev.Mass - cur.Mass
		fuelDelta := cur.ConsumedFuel - prev.ConsumedFuel
		assert.InDelta(t, massDelta, fuelDelta, 1e-6*prev.Mass+1e-9)
	}
}

func TestTaxi_ReachesTimeTarget(t *testing.T) {
	p := testPolar(t)
	prop, err := propulsion.NewConstantSFC(50000, 1.7e-5)
	require.NoError(t, err)

	start := flightpoint.New()
	start.Time = 0
	start.Altitude = 0
	start.TrueAirspeed = 5
	start.Mach = 0.01
	start.EquivalentAirspeed = 5
	start.Mass = 70000
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	desc := Descriptor{
		Name:       "taxi",
		Polar:      p,
		WingArea:   122.6,
		TimeStep:   10,
		ThrustRate: 0.05,
		MaximumCL:  math.NaN(),
		Target: Target{
			"time": Field{Kind: Absolute, Value: 300},
		},
	}
	desc, policy := NewTaxi(desc)

	trace, err := Run(start, desc, policy, prop)
	require.NoError(t, err)
	last := trace.Last()
	assert.InDelta(t, 300, last.Time, 10)
}

func TestTransition_AppliesMassRatio(t *testing.T) {
	start := flightpoint.New()
	start.Mass = 75000
	start.Altitude = 0
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	desc := Descriptor{
		Name:      "takeoff",
		MassRatio: 0.995,
		ISAOffset: 0,
		Target: Target{
			"altitude": Field{Kind: Absolute, Value: 457},
		},
	}
	trace, err := RunTransition(start, desc)
	require.NoError(t, err)
	require.Len(t, trace.Points, 2)
	last := trace.Last()
	assert.InDelta(t, 0.995*75000, last.Mass, 1e-6)
	assert.InDelta(t, 457, last.Altitude, 1e-6)
	assert.InDelta(t, 75000-0.995*75000, last.ConsumedFuel, 1e-6)
}

func TestTransition_AppliesReserveMassRatio(t *testing.T) {
	start := flightpoint.New()
	start.Mass = 75000
	start.Altitude = 0
	start.GroundDistance = 0
	start.ConsumedFuel = 0

	desc := Descriptor{
		Name:             "takeoff",
		MassRatio:        0.995,
		ReserveMassRatio: 0.01,
		ISAOffset:        0,
		Target: Target{
			"altitude": Field{Kind: Absolute, Value: 457},
		},
	}
	trace, err := RunTransition(start, desc)
	require.NoError(t, err)
	last := trace.Last()

	wantMass := 0.995*75000 - 0.01*75000
	assert.InDelta(t, wantMass, last.Mass, 1e-6)
	assert.InDelta(t, 75000-wantMass, last.ConsumedFuel, 1e-6)
}

func TestFlightPointRowRoundTrip(t *testing.T) {
	fp := flightpoint.New()
	fp.Time = 120
	fp.Altitude = 10000
	fp.Mass = 65000
	fp.Name = "cruise"
	fp.ThrustIsRegulated = true

	row := fp.ToRow()
	back := flightpoint.FromRow(row)

	assert.Equal(t, fp.Time, back.Time)
	assert.Equal(t, fp.Altitude, back.Altitude)
	assert.Equal(t, fp.Mass, back.Mass)
	assert.Equal(t, fp.Name, back.Name)
	assert.Equal(t, fp.ThrustIsRegulated, back.ThrustIsRegulated)
}
