package mission

import (
	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/missionerr"
	"github.com/avmission/missionperf/internal/propulsion"
	"github.com/avmission/missionperf/internal/segment"
)

// Phase is an ordered composition of segments sharing inherited
// parameters (spec.md §3, component F). Nesting is allowed: a phase's
// parts may themselves be phases.
type Phase struct {
	Name  string
	Parts []Runner
}

func (p *Phase) PartName() string { return p.Name }

// RunFrom runs every part of the phase in declaration order, enforcing
// the first-point continuity invariant between consecutive parts
// (spec.md §3, §5).
func (p *Phase) RunFrom(start flightpoint.FlightPoint, prop propulsion.Model) (segment.Trace, error) {
	full := segment.Trace{Points: []flightpoint.FlightPoint{start}}
	current := start

	for _, part := range p.Parts {
		trace, err := part.RunFrom(current, prop)
		if err != nil {
			return full, missionerr.Wrap(errKindOf(err), p.Name, "phase part failed: "+part.PartName(), err)
		}
		if len(trace.Points) == 0 {
			continue
		}
		// unstarted(current) means nothing real has run yet: current
		// is the caller's seed placeholder, not a prior state, so the
		// part's trace replaces it outright rather than being checked
		// against it (spec.md §4.8 step 4, "a Start segment's
		// explicit values").
		if unstarted(current) {
			full.Points = trace.Points
		} else {
			if !trace.Points[0].Continuity().Equal(current.Continuity()) {
				return full, missionerr.New(missionerr.InvalidMissionStruct, p.Name,
					"part "+part.PartName()+" did not continue from the previous part's end state")
			}
			full.Points = append(full.Points, trace.Points[1:]...)
		}
		current = trace.Last()
	}
	return full, nil
}

// unstarted reports whether fp is still the pristine seed placeholder
// (no segment has produced it) rather than a real previous state.
func unstarted(fp flightpoint.FlightPoint) bool {
	return !flightpoint.IsSet(fp.Time)
}

func errKindOf(err error) missionerr.Kind {
	var me *missionerr.Error
	if as(err, &me) {
		return me.Kind
	}
	return missionerr.InvalidMissionStruct
}

// as is a tiny errors.As wrapper kept local to avoid importing errors
// just for this one call site used twice in the package.
func as(err error, target **missionerr.Error) bool {
	for err != nil {
		if me, ok := err.(*missionerr.Error); ok {
			*target = me
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
