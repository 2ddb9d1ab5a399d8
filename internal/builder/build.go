package builder

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/avmission/missionperf/internal/mission"
	"github.com/avmission/missionperf/internal/missionerr"
	"github.com/avmission/missionperf/internal/polar"
	"github.com/avmission/missionperf/internal/propulsion"
	"github.com/avmission/missionperf/internal/segment"
	"github.com/avmission/missionperf/internal/variables"
)

// Builder instantiates a runnable mission.Mission from a parsed
// Document and a VariableStore (spec.md §4.9, component I), resolving
// every leaf parameter along the way.
type Builder struct {
	doc      *Document
	resolver *Resolver
	polars   map[string]*polar.Polar
	props    map[string]propulsion.Model
	logger   *zap.SugaredLogger
}

// New builds a Builder over doc and store. logger may be nil.
func New(doc *Document, store *variables.Store, logger *zap.SugaredLogger) *Builder {
	return &Builder{
		doc:      doc,
		resolver: NewResolver(store),
		polars:   make(map[string]*polar.Polar),
		props:    make(map[string]propulsion.Model),
		logger:   logger,
	}
}

// Required returns every variable the build looked up, whether or not
// it resolved (spec.md §6.3's required-input reporting).
func (b *Builder) Required() []variables.RequiredVariable { return b.resolver.Required }

// inherited is the set of phase-level parameter overrides a leaf
// segment falls back to when its own declaration leaves a field unset
// (spec.md §3: "parameters set at phase level are inherited by leaves
// unless overridden").
type inherited struct {
	EngineSetting string
	Polar         string
	Propulsion    string
	WingArea      RawValue
	TimeStep      RawValue
	ISAOffset     RawValue
	MaximumCL     RawValue
}

func (i inherited) withPhase(p PhaseDecl) inherited {
	out := i
	if p.EngineSetting != "" {
		out.EngineSetting = p.EngineSetting
	}
	if p.Polar != "" {
		out.Polar = p.Polar
	}
	if p.Propulsion != "" {
		out.Propulsion = p.Propulsion
	}
	if p.WingArea.Present {
		out.WingArea = p.WingArea
	}
	if p.TimeStep.Present {
		out.TimeStep = p.TimeStep
	}
	if p.ISAOffset.Present {
		out.ISAOffset = p.ISAOffset
	}
	if p.MaximumCL.Present {
		out.MaximumCL = p.MaximumCL
	}
	return out
}

func firstPresent(values ...RawValue) RawValue {
	for _, v := range values {
		if v.Present {
			return v
		}
	}
	return RawValue{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// BuildMission builds the named mission end to end.
func (b *Builder) BuildMission(name string) (*mission.Mission, error) {
	decl, ok := b.doc.Missions[name]
	if !ok {
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "no mission named \""+name+"\" in declaration")
	}
	ctx := Context{Mission: name}

	isaOffset, err := b.resolver.ResolveScalar(ctx, "isa_offset", decl.ISAOffset, "temperature", 0, true)
	if err != nil {
		return nil, err
	}

	parts := make([]mission.Runner, 0, len(decl.Parts))
	for i, pd := range decl.Parts {
		switch {
		case pd.Reserve != nil:
			mult, err := b.resolver.ResolveScalar(ctx, fmt.Sprintf("%s.parts[%d].reserve.multiplier", name, i), pd.Reserve.Multiplier, "", 0, false)
			if err != nil {
				return nil, err
			}
			parts = append(parts, mission.ReserveRef{
				Name:       fmt.Sprintf("%s_reserve_%d", name, i),
				RefRoute:   pd.Reserve.Ref,
				Multiplier: mult,
			})
		case pd.Route != "":
			r, err := b.buildRoute(ctx, pd.Route)
			if err != nil {
				return nil, err
			}
			parts = append(parts, r)
		case pd.Phase != "":
			p, err := b.buildPhase(ctx, pd.Phase, inherited{})
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		default:
			return nil, missionerr.New(missionerr.InvalidDeclaration, name, fmt.Sprintf("mission part %d names none of phase/route/reserve", i))
		}
	}

	if !hasMassInput(parts) {
		prefix, err := b.synthesizeMassInputPrefix(ctx)
		if err != nil {
			return nil, err
		}
		parts = append(prefix, parts...)
	}

	m := &mission.Mission{
		Name:      name,
		Parts:     parts,
		ISAOffset: isaOffset,
		Logger:    b.logger,
	}

	m.UseAllBlockFuel = decl.UseAllBlockFuel
	m.AdjustFuel = decl.AdjustFuel
	m.ComputeTOW = decl.ComputeTOW
	if decl.BlockFuel.Present {
		if m.BlockFuel, err = b.resolver.ResolveScalar(ctx, "block_fuel", decl.BlockFuel, "mass", 0, false); err != nil {
			return nil, err
		}
	}
	if decl.OWE.Present {
		if m.OWE, err = b.resolver.ResolveScalar(ctx, "owe", decl.OWE, "mass", 0, false); err != nil {
			return nil, err
		}
	}
	if decl.Payload.Present {
		if m.Payload, err = b.resolver.ResolveScalar(ctx, "payload", decl.Payload, "mass", 0, false); err != nil {
			return nil, err
		}
	}
	if decl.TOW.Present {
		if m.TOW, err = b.resolver.ResolveScalar(ctx, "tow", decl.TOW, "mass", 0, false); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// hasMassInput reports whether the already-built part list contains a
// MassInput segment anywhere, including inside phases (spec.md §4.8
// step 2).
func hasMassInput(parts []mission.Runner) bool {
	for _, p := range parts {
		if containsMassInput(p) {
			return true
		}
	}
	return false
}

func containsMassInput(r mission.Runner) bool {
	switch v := r.(type) {
	case mission.SegmentRunner:
		return v.Desc.Kind == segment.KindMassInput
	case *mission.Phase:
		for _, part := range v.Parts {
			if containsMassInput(part) {
				return true
			}
		}
	case *mission.Route:
		for _, part := range v.Climb {
			if containsMassInput(part) {
				return true
			}
		}
		for _, part := range v.Descent {
			if containsMassInput(part) {
				return true
			}
		}
	}
	return false
}

// synthesizeMassInputPrefix builds the default
// {start -> taxi-out -> transition-takeoff -> mass_input} prefix of
// spec.md §4.8 step 2, binding the reference mass to
// data:mission:<mission>:TOW unless the document configures something
// else.
func (b *Builder) synthesizeMassInputPrefix(ctx Context) ([]mission.Runner, error) {
	start := segment.Descriptor{Name: ctx.Mission + "_start", Kind: segment.KindStart}

	taxi := segment.Descriptor{
		Name:       ctx.Mission + "_taxi_out",
		ThrustRate: 0.07,
		TimeStep:   10,
		MaximumCL:  math.NaN(),
		Target:     segment.Target{"time": segment.Field{Kind: segment.Absolute, Value: 300}},
	}
	taxiDesc, taxiPolicy := segment.NewTaxi(taxi)

	transition := segment.Descriptor{
		Name:      ctx.Mission + "_transition_takeoff",
		Kind:      segment.KindTransition,
		MassRatio: 0.99,
	}

	massVarName := ctx.expand("data:mission", "TOW")
	mass, err := b.resolver.resolveNamed(massVarName, ctx.Mission+".mass_input", "mass", 0, false)
	if err != nil {
		return nil, err
	}

	return []mission.Runner{
		mission.SegmentRunner{Desc: start},
		mission.SegmentRunner{Desc: taxiDesc, Policy: taxiPolicy},
		mission.SegmentRunner{Desc: transition},
		mission.SegmentRunner{
			Desc:   segment.Descriptor{Name: ctx.Mission + "_mass_input", Kind: segment.KindMassInput},
			MassFn: func() (float64, error) { return mass, nil },
		},
	}, nil
}

// buildRoute builds the named route (spec.md §3, component G).
func (b *Builder) buildRoute(ctx Context, name string) (*mission.Route, error) {
	decl, ok := b.doc.Routes[name]
	if !ok {
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "no route named \""+name+"\" in declaration")
	}
	rctx := ctx
	rctx.Route = name

	rng, err := b.resolver.ResolveScalar(rctx, name+".range", decl.Range, "length", 0, false)
	if err != nil {
		return nil, err
	}
	accuracy, err := b.resolver.ResolveScalar(rctx, name+".distance_accuracy", decl.DistanceAccuracy, "length", 1000, true)
	if err != nil {
		return nil, err
	}

	climb := make([]mission.Runner, 0, len(decl.ClimbParts))
	for _, p := range decl.ClimbParts {
		runner, err := b.buildPhase(rctx, p, inherited{})
		if err != nil {
			return nil, err
		}
		climb = append(climb, runner)
	}
	descent := make([]mission.Runner, 0, len(decl.DescentParts))
	for _, p := range decl.DescentParts {
		runner, err := b.buildPhase(rctx, p, inherited{})
		if err != nil {
			return nil, err
		}
		descent = append(descent, runner)
	}

	cruiseDecl, ok := b.doc.Segments[decl.CruisePart]
	if !ok {
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "cruise_part \""+decl.CruisePart+"\" is not a declared segment")
	}
	cruiseDesc, cruisePolicy, isOptimal, err := b.buildCruiseDescriptor(rctx, decl.CruisePart, cruiseDecl, inherited{})
	if err != nil {
		return nil, err
	}

	return &mission.Route{
		Name:             name,
		Climb:            climb,
		Cruise:           cruiseDesc,
		CruisePolicy:     cruisePolicy,
		CruiseIsOptimal:  isOptimal,
		Descent:          descent,
		Range:            rng,
		DistanceAccuracy: accuracy,
	}, nil
}

// buildCruiseDescriptor builds a Cruise/OptimalCruise/Hold descriptor
// for use as a route's cruise leg: the ground_distance target is left
// for the route solver to fill in, per spec.md §4.7 ("cruise has no
// distance target — the route selects it").
func (b *Builder) buildCruiseDescriptor(ctx Context, name string, decl SegmentDecl, inh inherited) (segment.Descriptor, segment.Policy, bool, error) {
	desc, err := b.buildCommonDescriptor(ctx, name, decl, inh)
	if err != nil {
		return segment.Descriptor{}, nil, false, err
	}
	switch decl.Segment {
	case "Cruise":
		d, p := segment.NewCruise(desc)
		return d, p, false, nil
	case "OptimalCruise":
		d, p := segment.NewOptimalCruise(desc)
		return d, p, true, nil
	case "Hold":
		d, p := segment.NewHold(desc)
		return d, p, false, nil
	default:
		return segment.Descriptor{}, nil, false, missionerr.New(missionerr.InvalidDeclaration, name,
			"route cruise_part must be Cruise, OptimalCruise or Hold, got "+decl.Segment)
	}
}

// buildPhase builds the named phase, recursing into sub-phases and
// leaf segments (spec.md §3, component F).
func (b *Builder) buildPhase(ctx Context, name string, inh inherited) (*mission.Phase, error) {
	decl, ok := b.doc.Phases[name]
	if !ok {
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "no phase named \""+name+"\" in declaration")
	}
	pctx := ctx
	pctx.Phase = name
	inh = inh.withPhase(decl)

	parts := make([]mission.Runner, 0, len(decl.Parts))
	for i, pd := range decl.Parts {
		switch {
		case pd.Inline != nil:
			r, err := b.buildSegment(pctx, fmt.Sprintf("%s_%d", name, i), *pd.Inline, inh)
			if err != nil {
				return nil, err
			}
			parts = append(parts, r)
		case pd.SegmentRef != "":
			segDecl, ok := b.doc.Segments[pd.SegmentRef]
			if !ok {
				return nil, missionerr.New(missionerr.InvalidDeclaration, name, "segment_ref \""+pd.SegmentRef+"\" is not declared")
			}
			r, err := b.buildSegment(pctx, pd.SegmentRef, segDecl, inh)
			if err != nil {
				return nil, err
			}
			parts = append(parts, r)
		case pd.Phase != "":
			r, err := b.buildPhase(pctx, pd.Phase, inh)
			if err != nil {
				return nil, err
			}
			parts = append(parts, r)
		default:
			return nil, missionerr.New(missionerr.InvalidDeclaration, name, fmt.Sprintf("phase part %d names none of segment/segment_ref/phase", i))
		}
	}
	return &mission.Phase{Name: name, Parts: parts}, nil
}

// buildCommonDescriptor resolves the fields every segment kind shares
// (spec.md §3's Segment descriptor common fields), falling back to
// phase-inherited values when the leaf leaves them unset.
func (b *Builder) buildCommonDescriptor(ctx Context, name string, decl SegmentDecl, inh inherited) (segment.Descriptor, error) {
	polarName := firstNonEmpty(decl.Polar, inh.Polar)
	p, ok := b.polars[polarName]
	if !ok {
		built, err := b.buildPolar(polarName)
		if err != nil {
			return segment.Descriptor{}, err
		}
		p = built
		b.polars[polarName] = built
	}

	wingArea, err := b.resolver.ResolveScalar(ctx, name+".wing_area", firstPresent(decl.WingArea, inh.WingArea), "", 0, false)
	if err != nil {
		return segment.Descriptor{}, err
	}
	timeStep, err := b.resolver.ResolveScalar(ctx, name+".time_step", firstPresent(decl.TimeStep, inh.TimeStep), "time", 1, true)
	if err != nil {
		return segment.Descriptor{}, err
	}
	isaOffset, err := b.resolver.ResolveScalar(ctx, name+".isa_offset", firstPresent(decl.ISAOffset, inh.ISAOffset), "temperature", 0, true)
	if err != nil {
		return segment.Descriptor{}, err
	}
	maxCL, err := b.resolver.ResolveScalar(ctx, name+".maximum_cl", firstPresent(decl.MaximumCL, inh.MaximumCL), "", math.NaN(), true)
	if err != nil {
		return segment.Descriptor{}, err
	}
	thrustRate, err := b.resolver.ResolveScalar(ctx, name+".thrust_rate", decl.ThrustRate, "", 0, true)
	if err != nil {
		return segment.Descriptor{}, err
	}

	target := make(segment.Target, len(decl.Target))
	for key, raw := range decl.Target {
		fieldName, field, err := b.resolver.ResolveTarget(ctx, key, raw)
		if err != nil {
			return segment.Descriptor{}, err
		}
		target[fieldName] = field
	}

	return segment.Descriptor{
		Name:                  name,
		EngineSetting:         segment.EngineSetting(firstNonEmpty(decl.EngineSetting, inh.EngineSetting)),
		Polar:                 p,
		WingArea:              wingArea,
		ThrustRate:            thrustRate,
		Target:                target,
		TimeStep:              timeStep,
		InterruptIfUnfeasible: decl.InterruptIfUnfeasible,
		WarnOnSaturation:      decl.WarnOnSaturation,
		Logger:                b.logger,
		ISAOffset:             isaOffset,
		MaximumCL:             maxCL,
	}, nil
}

// buildSegment dispatches on decl.Segment to build a fully wrapped
// mission.Runner (spec.md §4.4-§4.6, component E).
func (b *Builder) buildSegment(ctx Context, name string, decl SegmentDecl, inh inherited) (mission.Runner, error) {
	switch decl.Segment {
	case "Start":
		desc, err := b.buildCommonDescriptor(ctx, name, decl, inh)
		if err != nil {
			return nil, err
		}
		desc.Kind = segment.KindStart
		return mission.SegmentRunner{Desc: desc}, nil

	case "MassInput":
		massName := ctx.expand("data:mission", "TOW")
		if raw, ok := decl.Target["mass"]; ok {
			v, err := b.resolver.ResolveScalar(ctx, name+".mass", raw, "mass", 0, false)
			if err != nil {
				return nil, err
			}
			return mission.SegmentRunner{
				Desc:   segment.Descriptor{Name: name, Kind: segment.KindMassInput},
				MassFn: func() (float64, error) { return v, nil },
			}, nil
		}
		v, err := b.resolver.resolveNamed(massName, name, "mass", 0, false)
		if err != nil {
			return nil, err
		}
		return mission.SegmentRunner{
			Desc:   segment.Descriptor{Name: name, Kind: segment.KindMassInput},
			MassFn: func() (float64, error) { return v, nil },
		}, nil

	case "Transition":
		desc, err := b.buildCommonDescriptor(ctx, name, decl, inh)
		if err != nil {
			return nil, err
		}
		desc.Kind = segment.KindTransition
		massRatio, err := b.resolver.ResolveScalar(ctx, name+".mass_ratio", decl.MassRatio, "", 1, true)
		if err != nil {
			return nil, err
		}
		desc.MassRatio = massRatio
		if decl.ReserveMassRatio.Present {
			rmr, err := b.resolver.ResolveScalar(ctx, name+".reserve_mass_ratio", decl.ReserveMassRatio, "", 0, true)
			if err != nil {
				return nil, err
			}
			desc.ReserveMassRatio = rmr
		}
		return mission.SegmentRunner{Desc: desc}, nil

	case "AltitudeChange", "SpeedChange", "Cruise", "OptimalCruise", "Hold", "Taxi":
		desc, err := b.buildCommonDescriptor(ctx, name, decl, inh)
		if err != nil {
			return nil, err
		}
		var policy segment.Policy
		switch decl.Segment {
		case "AltitudeChange":
			desc, policy = segment.NewAltitudeChange(desc)
		case "SpeedChange":
			desc, policy = segment.NewSpeedChange(desc)
		case "Cruise":
			desc, policy = segment.NewCruise(desc)
		case "OptimalCruise":
			desc, policy = segment.NewOptimalCruise(desc)
		case "Hold":
			desc, policy = segment.NewHold(desc)
		case "Taxi":
			desc, policy = segment.NewTaxi(desc)
		}
		return mission.SegmentRunner{Desc: desc, Policy: policy}, nil

	case "GroundSpeedChange", "Rotation", "EndOfTakeoff":
		desc, err := b.buildCommonDescriptor(ctx, name, decl, inh)
		if err != nil {
			return nil, err
		}
		if decl.FrictionCoeff.Present {
			fc, err := b.resolver.ResolveScalar(ctx, name+".friction_coeff", decl.FrictionCoeff, "", 0, true)
			if err != nil {
				return nil, err
			}
			desc.FrictionCoeff = fc
		}
		if decl.RotationRate.Present {
			rr, err := b.resolver.ResolveScalar(ctx, name+".rotation_rate", decl.RotationRate, "", 0, true)
			if err != nil {
				return nil, err
			}
			desc.RotationRate = rr
		}
		if decl.AlphaLimit.Present {
			al, err := b.resolver.ResolveScalar(ctx, name+".alpha_limit", decl.AlphaLimit, "angle", 0, true)
			if err != nil {
				return nil, err
			}
			desc.AlphaLimit = al
		}
		var policy segment.Policy
		switch decl.Segment {
		case "GroundSpeedChange":
			desc, policy = segment.NewGroundSpeedChange(desc)
		case "Rotation":
			desc, policy = segment.NewRotation(desc)
		case "EndOfTakeoff":
			desc, policy = segment.NewEndOfTakeoff(desc)
		}
		return mission.SegmentRunner{Desc: desc, Policy: policy}, nil

	default:
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "unknown segment kind \""+decl.Segment+"\"")
	}
}

// buildPolar instantiates the named polar resource, applying the
// ground-effect modifier when requested (spec.md §4.2).
func (b *Builder) buildPolar(name string) (*polar.Polar, error) {
	decl, ok := b.doc.Polars[name]
	if !ok {
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "no polar named \""+name+"\" in declaration")
	}
	var mods []polar.Modifier
	if decl.GroundEffect {
		mods = append(mods, polar.GroundEffectModifier(decl.WingSpan, decl.GearHeight, decl.InducedDragCoeff, decl.WingletFactor, decl.GroundElevation))
	}
	return polar.New(decl.CL, decl.CD, mods...)
}

// buildPropulsion instantiates the named propulsion resource.
func (b *Builder) buildPropulsion(ctx Context, name string) (propulsion.Model, error) {
	if m, ok := b.props[name]; ok {
		return m, nil
	}
	decl, ok := b.doc.Propulsions[name]
	if !ok {
		return nil, missionerr.New(missionerr.InvalidDeclaration, name, "no propulsion named \""+name+"\" in declaration")
	}
	maxThrust, err := b.resolver.ResolveScalar(ctx, name+".max_thrust", decl.MaxThrust, "force", 0, false)
	if err != nil {
		return nil, err
	}
	sfc, err := b.resolver.ResolveScalar(ctx, name+".sfc", decl.SFC, "sfc", 0, false)
	if err != nil {
		return nil, err
	}
	m, err := propulsion.NewConstantSFC(maxThrust, sfc)
	if err != nil {
		return nil, err
	}
	b.props[name] = m
	return m, nil
}

// BuildPropulsion resolves the named top-level propulsion resource for
// the caller to pass into mission.Mission.Run (the kernel takes the
// active propulsion.Model as a Run argument rather than storing it on
// the Mission, per spec.md §5's "shared, immutable" resource policy).
func (b *Builder) BuildPropulsion(name string) (propulsion.Model, error) {
	return b.buildPropulsion(Context{}, name)
}
