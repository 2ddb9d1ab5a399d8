// Package polar implements the aerodynamic polar (spec.md §3, §4.2,
// component C): a CL -> CD mapping, optionally adjusted by a set of
// modifiers, with an optimum-CL search cached per instance.
//
// The piecewise-linear interpolation with clamped out-of-range lookup
// is grounded on jsbsimxmlparser.go's interpolate1D (itself used there
// for JSBSim aerodynamic coefficient tables); here it is the scalar
// CL -> CD relation rather than a generic N-D table.
package polar

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/avmission/missionperf/internal/flightpoint"
)

// Modifier adjusts CD given the current CL and flight point; used for
// ground-effect and similar multiplicative/additive corrections.
type Modifier func(cl float64, fp flightpoint.FlightPoint) float64

// Polar holds a monotone CL/CD pair plus its modifiers.
type Polar struct {
	cl        []float64
	cd        []float64
	modifiers []Modifier

	optimumCL    float64
	optimumValid bool
}

// New builds a Polar from strictly-increasing CL and matching CD
// arrays (len >= 2), per spec.md §3.
func New(cl, cd []float64, modifiers ...Modifier) (*Polar, error) {
	if len(cl) < 2 || len(cl) != len(cd) {
		return nil, fmt.Errorf("polar: CL/CD arrays must have matching length >= 2, got %d/%d", len(cl), len(cd))
	}
	if !floats.IsSorted(cl) {
		return nil, fmt.Errorf("polar: CL must be strictly increasing")
	}
	for i := 1; i < len(cl); i++ {
		if cl[i] == cl[i-1] {
			return nil, fmt.Errorf("polar: CL must be strictly increasing, duplicate value %g", cl[i])
		}
	}
	p := &Polar{
		cl:        append([]float64(nil), cl...),
		cd:        append([]float64(nil), cd...),
		modifiers: modifiers,
	}
	return p, nil
}

// baseCDAt interpolates the raw CL/CD table (piecewise linear,
// clamping out of range), with no modifier contribution.
func (p *Polar) baseCDAt(cl float64) float64 {
	n := len(p.cl)
	if cl <= p.cl[0] {
		return p.cd[0]
	}
	if cl >= p.cl[n-1] {
		return p.cd[n-1]
	}
	for i := 0; i < n-1; i++ {
		if cl >= p.cl[i] && cl <= p.cl[i+1] {
			frac := (cl - p.cl[i]) / (p.cl[i+1] - p.cl[i])
			return p.cd[i] + frac*(p.cd[i+1]-p.cd[i])
		}
	}
	return p.cd[n-1]
}

// CDAt returns the drag coefficient at cl, base table plus every
// modifier's contribution, clamped strictly positive (spec.md
// invariant).
func (p *Polar) CDAt(cl float64, fp flightpoint.FlightPoint) float64 {
	cd := p.baseCDAt(cl)
	for _, m := range p.modifiers {
		cd += m(cl, fp)
	}
	if cd <= 0 {
		cd = 1e-6
	}
	return cd
}

// HasModifiers reports whether this polar carries any modifier
// (ground effect, etc.) — when false, optimum CL is analytical.
func (p *Polar) HasModifiers() bool {
	return len(p.modifiers) > 0
}

// CLRange returns the polar's valid CL domain.
func (p *Polar) CLRange() (min, max float64) {
	return p.cl[0], p.cl[len(p.cl)-1]
}
