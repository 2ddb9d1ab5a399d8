// Package atmosphere implements the 1976 US Standard Atmosphere with
// an additive ISA temperature offset (spec.md §4.1, component A).
//
// Generalized from the teacher's UpdateAtmosphere (aircraft_state.go),
// which only modeled the troposphere and a single constant layer above
// 11 km. Here every standard layer up to 84 km is carried, and ΔISA
// shifts the whole temperature profile rather than just sea level.
package atmosphere

import (
	"fmt"
	"math"
)

const (
	// SeaLevelDensity is ρ₀ in the EAS definition.
	SeaLevelDensity = 1.225 // kg/m^3
	gasConstant     = 287.05287
	gravity         = 9.80665
	gamma           = 1.4

	maxAltitude = 84000.0 // m
)

// layer is one segment of the piecewise ISA temperature/pressure model,
// defined by its base altitude, base temperature, base pressure and
// lapse rate (K/m; 0 means isothermal).
type layer struct {
	baseAlt   float64
	baseTemp  float64
	basePress float64
	lapseRate float64
}

// layers is computed once at package init from the standard lapse
// rates; basePress/baseTemp for layers above the first are derived so
// the profile is continuous.
var layers []layer

func init() {
	lapseRates := []struct {
		baseAlt, lapseRate float64
	}{
		{0, -0.0065},
		{11000, 0},
		{20000, 0.001},
		{32000, 0.0028},
		{47000, 0},
		{51000, -0.0028},
		{71000, -0.002},
		{84852, 0}, // sentinel upper bound, never entered
	}
	layers = make([]layer, 0, len(lapseRates)-1)
	t := 288.15
	p := 101325.0
	for i := 0; i < len(lapseRates)-1; i++ {
		cur := lapseRates[i]
		next := lapseRates[i+1]
		layers = append(layers, layer{baseAlt: cur.baseAlt, baseTemp: t, basePress: p, lapseRate: cur.lapseRate})
		dh := next.baseAlt - cur.baseAlt
		if cur.lapseRate == 0 {
			p = p * math.Exp(-gravity*dh/(gasConstant*t))
		} else {
			tNext := t + cur.lapseRate*dh
			p = p * math.Pow(tNext/t, -gravity/(gasConstant*cur.lapseRate))
			t = tNext
		}
	}
}

// ErrAltitudeOutOfRange is returned above 84 km (spec.md §4.1).
type ErrAltitudeOutOfRange struct{ Altitude float64 }

func (e *ErrAltitudeOutOfRange) Error() string {
	return fmt.Sprintf("atmosphere: altitude %.1f m exceeds %.0f m model ceiling", e.Altitude, maxAltitude)
}

// State is the ISA atmospheric state at one (altitude, ΔISA) pair.
type State struct {
	Altitude  float64
	ISAOffset float64

	Temperature float64 // K
	Pressure    float64 // Pa
	Density     float64 // kg/m^3
	SoundSpeed  float64 // m/s
}

// At computes the atmospheric state at altitude (m) with the given
// uniform temperature offset ΔISA (K).
func At(altitude, isaOffset float64) (State, error) {
	if altitude > maxAltitude {
		return State{}, &ErrAltitudeOutOfRange{Altitude: altitude}
	}
	h := altitude
	if h < 0 {
		h = 0
	}

	l := layers[0]
	for i := range layers {
		if h >= layers[i].baseAlt {
			l = layers[i]
		} else {
			break
		}
	}

	dh := h - l.baseAlt
	baseTempWithOffset := l.baseTemp + isaOffset

	var temp, press float64
	if l.lapseRate == 0 {
		temp = baseTempWithOffset
		// ΔISA shifts temperature uniformly but, per the standard
		// hydrostatic relation, pressure in an isothermal layer only
		// depends on the *unshifted* reference profile's pressure at
		// the layer base combined with the actual (offset) scale
		// height.
		press = l.basePress * math.Exp(-gravity*dh/(gasConstant*temp))
	} else {
		temp = baseTempWithOffset + l.lapseRate*dh
		press = l.basePress * math.Pow(temp/baseTempWithOffset, -gravity/(gasConstant*l.lapseRate))
	}

	density := press / (gasConstant * temp)
	sound := math.Sqrt(gamma * gasConstant * temp)

	return State{
		Altitude:    altitude,
		ISAOffset:   isaOffset,
		Temperature: temp,
		Pressure:    press,
		Density:     density,
		SoundSpeed:  sound,
	}, nil
}

// TASFromEAS converts equivalent to true airspeed at this state.
func (s State) TASFromEAS(eas float64) float64 {
	return eas * math.Sqrt(SeaLevelDensity/s.Density)
}

// EASFromTAS converts true to equivalent airspeed at this state.
func (s State) EASFromTAS(tas float64) float64 {
	return tas * math.Sqrt(s.Density/SeaLevelDensity)
}

// Mach returns the Mach number for a given true airspeed at this state.
func (s State) Mach(tas float64) float64 {
	return tas / s.SoundSpeed
}

// TASFromMach converts Mach number to true airspeed at this state.
func (s State) TASFromMach(mach float64) float64 {
	return mach * s.SoundSpeed
}

// CASFromTAS converts true airspeed to calibrated airspeed using the
// compressible pitot relation, direct for M<0.3 and iterative above
// (spec.md §4.1).
func (s State) CASFromTAS(tas float64) float64 {
	mach := s.Mach(tas)
	const p0 = 101325.0
	const rho0 = SeaLevelDensity

	qc := s.Pressure * (math.Pow(1+0.2*mach*mach, 3.5) - 1)
	if mach < 0.3 {
		// Direct inversion of the subsonic impact-pressure relation.
		a0 := math.Sqrt(gamma * p0 / rho0)
		return a0 * math.Sqrt(5*(math.Pow(qc/p0+1, 2/7.0)-1))
	}
	return casFromImpactPressure(qc, p0, rho0)
}

// casFromImpactPressure solves the standard impact-pressure equation
// for CAS at sea-level reference conditions, iterating with Newton's
// method from an incompressible seed.
func casFromImpactPressure(qc, p0, rho0 float64) float64 {
	cas := math.Sqrt(2 * qc / rho0) // incompressible seed
	for i := 0; i < 20; i++ {
		machC := cas / math.Sqrt(gamma*p0/rho0)
		f := p0*(math.Pow(1+0.2*machC*machC, 3.5)-1) - qc
		if math.Abs(f) < 1e-6 {
			break
		}
		df := p0 * 3.5 * math.Pow(1+0.2*machC*machC, 2.5) * (0.4 * machC / math.Sqrt(gamma*p0/rho0))
		if df == 0 {
			break
		}
		cas -= f / df
	}
	return cas
}
