package polar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avmission/missionperf/internal/flightpoint"
)

func TestNew_RejectsNonMonotoneCL(t *testing.T) {
	_, err := New([]float64{0, 1, 0.5}, []float64{0.02, 0.03, 0.06})
	require.Error(t, err)
}

func TestCDAt_Interpolation(t *testing.T) {
	p, err := New([]float64{0, 0.5, 1.0}, []float64{0.02, 0.03, 0.06})
	require.NoError(t, err)

	fp := flightpoint.New()
	assert.InDelta(t, 0.025, p.CDAt(0.25, fp), 1e-9)
	assert.InDelta(t, 0.02, p.CDAt(-1, fp), 1e-9) // clamp below range
	assert.InDelta(t, 0.06, p.CDAt(2, fp), 1e-9)   // clamp above range
}

func TestCDAt_AlwaysPositive(t *testing.T) {
	p, err := New([]float64{0, 1}, []float64{-0.01, 0.02})
	require.NoError(t, err)
	fp := flightpoint.New()
	assert.Greater(t, p.CDAt(0, fp), 0.0)
}

func TestOptimumCL_Analytical(t *testing.T) {
	// CD = 0.02 + 0.05*CL^2 -> optimum CL/CD at CL = sqrt(0.02/0.05)
	cl := []float64{}
	cd := []float64{}
	for i := 0; i <= 40; i++ {
		c := float64(i) / 40.0
		cl = append(cl, c)
		cd = append(cd, 0.02+0.05*c*c)
	}
	p, err := New(cl, cd)
	require.NoError(t, err)

	fp := flightpoint.New()
	opt := p.OptimumCL(fp)
	assert.InDelta(t, 0.632, opt, 0.02)
}
