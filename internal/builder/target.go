package builder

import (
	"strings"

	"github.com/avmission/missionperf/internal/segment"
)

// fieldDimension maps a target field name to the physical dimension
// its resolved value must carry.
var fieldDimension = map[string]string{
	"altitude":             "length",
	"ground_distance":      "length",
	"time":                 "time",
	"mach":                 "",
	"true_airspeed":        "speed",
	"equivalent_airspeed":  "speed",
	"mass":                 "mass",
}

// ResolveTarget resolves one entry of a segment's target map (spec.md
// §4.4, §4.9 step 5): a "delta_"-prefixed key produces a Delta field
// relative to the segment's start point; the special strings
// "optimal_altitude" and "optimal_flight_level" (only meaningful for
// the altitude field) bypass variable resolution entirely.
func (r *Resolver) ResolveTarget(ctx Context, key string, raw RawValue) (fieldName string, field segment.Field, err error) {
	fieldName = key
	kind := segment.Absolute
	if strings.HasPrefix(key, "delta_") {
		fieldName = strings.TrimPrefix(key, "delta_")
		kind = segment.Delta
	}

	if raw.Present && !raw.IsFloat {
		switch strings.TrimSpace(strings.ToLower(raw.Text)) {
		case "constant":
			return fieldName, segment.Field{Kind: segment.Constant}, nil
		case "optimal_altitude":
			return fieldName, segment.Field{Kind: segment.OptimalAltitude}, nil
		case "optimal_flight_level":
			return fieldName, segment.Field{Kind: segment.OptimalFlightLevel}, nil
		}
	}

	v, err := r.ResolveScalar(ctx, key, raw, fieldDimension[fieldName], 0, false)
	if err != nil {
		return fieldName, segment.Field{}, err
	}
	return fieldName, segment.Field{Kind: kind, Value: v}, nil
}
