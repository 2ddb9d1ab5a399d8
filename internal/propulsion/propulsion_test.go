package propulsion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avmission/missionperf/internal/flightpoint"
)

func TestConstantSFC_ManualMode(t *testing.T) {
	m, err := NewConstantSFC(100000, 1.7e-5)
	require.NoError(t, err)

	fp := flightpoint.New()
	fp.ThrustIsRegulated = false
	fp.ThrustRate = 0.5

	require.NoError(t, m.ComputeFlightPoint(&fp))
	assert.InDelta(t, 50000, fp.Thrust, 1e-6)
	assert.InDelta(t, 1.7e-5, fp.SFC, 1e-12)
}

func TestConstantSFC_RegulatedMode_ClipsToMax(t *testing.T) {
	m, err := NewConstantSFC(100000, 1.7e-5)
	require.NoError(t, err)

	fp := flightpoint.New()
	fp.ThrustIsRegulated = true
	fp.Thrust = 150000

	require.NoError(t, m.ComputeFlightPoint(&fp))
	assert.InDelta(t, 100000, fp.Thrust, 1e-6)
	assert.InDelta(t, 1.0, fp.ThrustRate, 1e-9)
}

func TestConsumedMass(t *testing.T) {
	m, err := NewConstantSFC(100000, 1.7e-5)
	require.NoError(t, err)

	fp := flightpoint.New()
	fp.Thrust = 50000
	got := m.ConsumedMass(fp, 10)
	assert.InDelta(t, 50000*1.7e-5*10, got, 1e-9)
}
