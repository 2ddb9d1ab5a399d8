package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/variables"
)

const singleCruiseYAML = `
polars:
  cruise_polar:
    cl: [0, 0.5, 1.0]
    cd: [0.02, 0.03, 0.06]

propulsions:
  cfm:
    max_thrust: "200000 N"
    sfc: "1.7e-5 kg/N/s"

segments:
  initial:
    segment: Start
    polar: cruise_polar
    wing_area: 122.6
    target:
      altitude: "10668 m"
      mach: "0.78"
      true_airspeed: "230.1 m/s"
      equivalent_airspeed: "115.05 m/s"
  set_tow:
    segment: MassInput
  main_cruise:
    segment: Cruise
    polar: cruise_polar
    wing_area: 122.6
    time_step: "60 s"

phases:
  prefix:
    parts:
      - segment_ref: initial
      - segment_ref: set_tow

routes:
  main:
    range: "3704 km"
    distance_accuracy: "1000 m"
    cruise_part: main_cruise

missions:
  S1:
    parts:
      - phase: prefix
      - route: main
`

func TestBuild_SingleCruiseRoute(t *testing.T) {
	doc, err := Parse([]byte(singleCruiseYAML))
	require.NoError(t, err)

	store := variables.New()
	store.SetInput("data:mission:S1:prefix:TOW", variables.Variable{Value: 70000, Unit: "kg"})

	b := New(doc, store, nil)
	m, err := b.BuildMission("S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", m.Name)
	require.Len(t, m.Parts, 2) // the declared prefix phase + the route

	prop, err := b.BuildPropulsion("cfm")
	require.NoError(t, err)

	start := flightpoint.New()
	res, err := m.Run(start, prop)
	require.NoError(t, err)

	assert.InDelta(t, 6900, res.TotalFuel, 2000)
	assert.Greater(t, res.TotalTime, 0.0)
}

func TestResolver_ContextualVariable(t *testing.T) {
	store := variables.New()
	store.SetInput("data:mission:S1:main:cruise_altitude", variables.Variable{Value: 10668, Unit: "m"})

	r := NewResolver(store)
	ctx := Context{Mission: "S1", Route: "main"}
	v, err := r.ResolveScalar(ctx, "altitude", RawValue{Present: true, Text: "~cruise_altitude"}, "length", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 10668.0, v)
}

func TestResolver_OppositeOf(t *testing.T) {
	store := variables.New()
	store.SetInput("data:mission:S1:delta_h", variables.Variable{Value: 500, Unit: "m"})

	r := NewResolver(store)
	ctx := Context{Mission: "S1"}
	v, err := r.ResolveScalar(ctx, "altitude", RawValue{Present: true, Text: "-data:mission:S1:delta_h"}, "length", 0, false)
	require.NoError(t, err)
	assert.Equal(t, -500.0, v)
}

func TestResolver_UnitMismatch(t *testing.T) {
	store := variables.New()
	store.SetInput("data:mission:S1:range", variables.Variable{Value: 100, Unit: "kg"})

	r := NewResolver(store)
	ctx := Context{Mission: "S1"}
	_, err := r.ResolveScalar(ctx, "range", RawValue{Present: true, Text: "data:mission:S1:range"}, "length", 0, false)
	require.Error(t, err)
}

func TestResolver_LiteralWithUnit(t *testing.T) {
	r := NewResolver(variables.New())
	v, err := r.ResolveScalar(Context{}, "range", RawValue{Present: true, Text: "1500 NM"}, "length", 0, false)
	require.NoError(t, err)
	assert.InDelta(t, 1500*1852, v, 1e-6)
}
