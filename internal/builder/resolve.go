package builder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/avmission/missionperf/internal/missionerr"
	"github.com/avmission/missionperf/internal/units"
	"github.com/avmission/missionperf/internal/variables"
)

// variableRefPrefixes are the recognized prefixes that mark a raw
// string as a named variable reference rather than a bare literal
// (spec.md §4.9 step 2).
var variableRefPrefixes = []string{"data:", "settings:", "tuning:"}

// Context carries the mission/route/phase names a contextual ("~")
// reference is expanded against (spec.md §4.9 step 4).
type Context struct {
	Mission string
	Route   string
	Phase   string
}

func (c Context) expand(prefix, suffix string) string {
	if prefix == "" {
		prefix = "data:mission"
	}
	parts := []string{prefix, c.Mission}
	if c.Route != "" {
		parts = append(parts, c.Route)
	}
	if c.Phase != "" {
		parts = append(parts, c.Phase)
	}
	parts = append(parts, suffix)
	return strings.Join(parts, ":")
}

// Resolver turns RawValues into SI float64s against a VariableStore,
// implementing the five-step order of spec.md §4.9 and accumulating
// the set of variables it had to look up (for §6.3's required-input
// reporting, whether or not they resolved).
type Resolver struct {
	Store    *variables.Store
	Required []variables.RequiredVariable
}

// NewResolver builds a Resolver reading from store.
func NewResolver(store *variables.Store) *Resolver {
	return &Resolver{Store: store}
}

// ResolveScalar resolves a plain parameter (steps 1-4: literal, named
// variable, opposite-of, contextual). name is used both for error
// messages and as the default suffix substituted into a contextual
// reference whose suffix is empty. dimension is the expected physical
// dimension (e.g. "length", "mass"); defaultVal/hasDefault supply a
// fallback when the named variable is absent from the store.
func (r *Resolver) ResolveScalar(ctx Context, name string, raw RawValue, dimension string, defaultVal float64, hasDefault bool) (float64, error) {
	if !raw.Present {
		if hasDefault {
			return defaultVal, nil
		}
		return 0, missionerr.New(missionerr.UnresolvedVariable, name, "no value given and no default available")
	}

	text := strings.TrimSpace(raw.Text)

	// Step 1: literal scalar with optional unit.
	if raw.IsFloat {
		return raw.Float, nil
	}
	if v, unit, ok := splitNumberAndUnit(text); ok {
		if err := units.CheckDimension(name, unit, dimension); err != nil {
			return 0, err
		}
		return units.ToSI(v, unit)
	}

	negate := false
	ref := text

	// Step 3 precondition: opposite-of prefix, applied after we know
	// the remainder is itself a named/contextual reference.
	if strings.HasPrefix(ref, "-") {
		candidate := strings.TrimPrefix(ref, "-")
		if isVariableRef(candidate) || strings.Contains(candidate, "~") {
			negate = true
			ref = candidate
		}
	}

	fullName := ref
	// Step 4: contextual substitution.
	if strings.Contains(ref, "~") {
		idx := strings.Index(ref, "~")
		fullName = ctx.expand(ref[:idx], orDefault(ref[idx+1:], name))
	} else if !isVariableRef(ref) {
		return 0, missionerr.New(missionerr.InvalidDeclaration, name, fmt.Sprintf("unrecognized value %q", raw.Text))
	}

	v, err := r.resolveNamed(fullName, name, dimension, defaultVal, hasDefault)
	if err != nil {
		return 0, err
	}
	if negate {
		v = -v
	}
	return v, nil
}

// resolveNamed is step 2: look up fullName in the store and record it
// as required either way; if missing, fall back to the default, or
// return an UnresolvedVariable error when there is none.
func (r *Resolver) resolveNamed(fullName, paramName, dimension string, defaultVal float64, hasDefault bool) (float64, error) {
	v, ok := r.Store.Get(fullName)
	req := variables.RequiredVariable{Name: fullName, Unit: dimensionUnit(dimension), Default: defaultVal, HasDefault: hasDefault}
	if !ok {
		r.Required = append(r.Required, req)
		if hasDefault {
			return defaultVal, nil
		}
		return 0, missionerr.New(missionerr.UnresolvedVariable, paramName, "required variable \""+fullName+"\" is not bound")
	}
	r.Required = append(r.Required, req)
	if v.IsList {
		return 0, missionerr.New(missionerr.InvalidDeclaration, paramName, "variable \""+fullName+"\" is an array, scalar expected")
	}
	if err := units.CheckDimension(fullName, v.Unit, dimension); err != nil {
		return 0, missionerr.Wrap(missionerr.UnitMismatch, paramName, "unit mismatch resolving "+fullName, err)
	}
	return units.ToSI(v.Value, v.Unit)
}

// isVariableRef reports whether s begins with one of the recognized
// named-variable prefixes (spec.md §4.9 step 2).
func isVariableRef(s string) bool {
	for _, p := range variableRefPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// splitNumberAndUnit parses a literal of the form "<number>" or
// "<number> <unit>".
func splitNumberAndUnit(text string) (value float64, unit string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, "", false
	}
	v, err := parseFloatField(fields[0])
	if err != nil {
		return 0, "", false
	}
	if len(fields) == 2 {
		return v, fields[1], true
	}
	return v, "", true
}

func parseFloatField(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// dimensionUnit returns a representative unit string for a dimension,
// used only for RequiredVariable reporting.
func dimensionUnit(dimension string) string {
	switch dimension {
	case "length":
		return "m"
	case "mass":
		return "kg"
	case "time":
		return "s"
	case "speed":
		return "m/s"
	case "angle":
		return "rad"
	case "force":
		return "N"
	case "temperature":
		return "K"
	case "sfc":
		return "kg/N/s"
	default:
		return "-"
	}
}
