package atmosphere

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAt_SeaLevelStandard(t *testing.T) {
	s, err := At(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 288.15, s.Temperature, 1e-6)
	assert.InDelta(t, 101325.0, s.Pressure, 1e-3)
	assert.InDelta(t, 1.225, s.Density, 1e-3)
}

func TestAt_AboveCeiling(t *testing.T) {
	_, err := At(85000, 0)
	require.Error(t, err)
	var target *ErrAltitudeOutOfRange
	assert.ErrorAs(t, err, &target)
}

func TestISAOffset_IncreasesTASAtSameEAS(t *testing.T) {
	// Testable property 12: isa_offset != 0 produces strictly higher
	// TAS at same EAS and altitude.
	base, err := At(10000, 0)
	require.NoError(t, err)
	hot, err := At(10000, 15)
	require.NoError(t, err)

	eas := 120.0
	tasBase := base.TASFromEAS(eas)
	tasHot := hot.TASFromEAS(eas)
	assert.Greater(t, tasHot, tasBase)
}

func TestMachRoundTrip(t *testing.T) {
	s, err := At(10668, 0)
	require.NoError(t, err)
	tas := s.TASFromMach(0.78)
	assert.InDelta(t, 0.78, s.Mach(tas), 1e-9)
}

func TestTASEASRoundTrip(t *testing.T) {
	s, err := At(5000, 0)
	require.NoError(t, err)
	tas := 200.0
	eas := s.EASFromTAS(tas)
	assert.InDelta(t, tas, s.TASFromEAS(eas), 1e-6)
}
