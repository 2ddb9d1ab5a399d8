package polar

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/avmission/missionperf/internal/flightpoint"
)

const meshPoints = 2000

// OptimumCL returns the CL at which CL/CD is maximal, cached per
// instance (spec.md §4.2). Analytical (closed-form search over the
// table directly) when no modifier is present; otherwise evaluated
// over a finer mesh built with gonum's floats.Span to bracket a good
// starting point, then refined with gonum/optimize (per SPEC_FULL.md's
// DOMAIN STACK), since modifiers may depend on the flight point and
// are not necessarily convex over the whole table.
func (p *Polar) OptimumCL(fp flightpoint.FlightPoint) float64 {
	if p.optimumValid && !p.HasModifiers() {
		return p.optimumCL
	}

	if !p.HasModifiers() {
		// CL/CD is monotone along each linear piece of the table, so its
		// maximum lies on one of the table's own CL values.
		bestRatio := -1.0
		for _, cl := range p.cl {
			if ratio := cl / p.CDAt(cl, fp); cl > 0 && ratio > bestRatio {
				p.optimumCL, bestRatio = cl, ratio
			}
		}
		if bestRatio > 0 {
			p.optimumValid = true
			return p.optimumCL
		}
	}

	lo, hi := p.CLRange()
	mesh := make([]float64, meshPoints)
	floats.Span(mesh, lo, hi)

	bestCL := mesh[0]
	bestRatio := -1.0
	for _, cl := range mesh {
		if cl <= 0 {
			continue
		}
		cd := p.CDAt(cl, fp)
		ratio := cl / cd
		if ratio > bestRatio {
			bestRatio = ratio
			bestCL = cl
		}
	}

	bestCL = refineOptimumCL(bestCL, lo, hi, func(cl float64) float64 {
		return cl / p.CDAt(cl, fp)
	})

	if !p.HasModifiers() {
		p.optimumCL = bestCL
		p.optimumValid = true
	}
	return bestCL
}

// refineOptimumCL polishes a mesh-scan maximum of f (L/D) with
// gonum/optimize's Nelder-Mead, started at the mesh's best point and
// clamped to [lo, hi] inside the objective so the simplex can't wander
// off the polar's defined CL range.
func refineOptimumCL(start, lo, hi float64, f func(float64) float64) float64 {
	clamp := func(x []float64) float64 {
		cl := x[0]
		if cl < lo {
			cl = lo
		}
		if cl > hi {
			cl = hi
		}
		return cl
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return -f(clamp(x))
		},
	}
	result, err := optimize.Minimize(problem, []float64{start}, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return start
	}
	return clamp(result.X)
}
