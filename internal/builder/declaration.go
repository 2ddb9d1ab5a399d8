// Package builder implements the mission declaration layer (spec.md
// §4.9, §6.1, component I): parsing a YAML mission description and
// resolving its variable bindings against a VariableStore into a
// runnable mission.Mission.
//
// Grounded on rhino11-trafficsim and sagostin-goefidash's use of
// gopkg.in/yaml.v3 for hierarchical configuration — the pack's
// consistent choice for structured declaration files.
package builder

// Document is the top-level parsed form of a mission declaration file
// (spec.md §6.1): phases, routes and missions keyed by name, plus an
// optional segments shortcut table and the polar/propulsion resources
// segments reference by name.
type Document struct {
	Polars      map[string]PolarDecl      `yaml:"polars"`
	Propulsions map[string]PropulsionDecl `yaml:"propulsions"`
	Segments    map[string]SegmentDecl    `yaml:"segments"`
	Phases      map[string]PhaseDecl      `yaml:"phases"`
	Routes      map[string]RouteDecl      `yaml:"routes"`
	Missions    map[string]MissionDecl    `yaml:"missions"`
}

// PolarDecl is an inline aerodynamic polar resource (spec.md §3's
// opaque Polar input, given concrete YAML shape here since the core
// has no aero model of its own to produce one).
type PolarDecl struct {
	CL                []float64 `yaml:"cl"`
	CD                []float64 `yaml:"cd"`
	GroundEffect      bool      `yaml:"ground_effect"`
	WingSpan          float64   `yaml:"wing_span"`
	GearHeight        float64   `yaml:"gear_height"`
	InducedDragCoeff  float64   `yaml:"induced_drag_coeff"`
	WingletFactor     float64   `yaml:"winglet_factor"`
	GroundElevation   float64   `yaml:"ground_elevation"`
}

// PropulsionDecl configures the reference ConstantSFC model (spec.md
// §4.3, §6.4: concrete propulsion models are external collaborators;
// this is the one shipped so declaration files are runnable
// standalone).
type PropulsionDecl struct {
	MaxThrust RawValue `yaml:"max_thrust"`
	SFC       RawValue `yaml:"sfc"`
}

// SegmentDecl is one entry of the segments table or a phase's inline
// part list (spec.md §6.1's per-segment field table).
type SegmentDecl struct {
	Segment               string              `yaml:"segment"`
	Target                map[string]RawValue `yaml:"target"`
	EngineSetting         string              `yaml:"engine_setting"`
	Polar                 string              `yaml:"polar"`
	Propulsion            string              `yaml:"propulsion"`
	WingArea              RawValue            `yaml:"wing_area"`
	ThrustRate            RawValue            `yaml:"thrust_rate"`
	TimeStep              RawValue            `yaml:"time_step"`
	ISAOffset             RawValue            `yaml:"isa_offset"`
	InterruptIfUnfeasible bool                `yaml:"interrupt_if_unfeasible"`
	WarnOnSaturation      bool                `yaml:"warn_on_saturation"`
	MaximumCL             RawValue            `yaml:"maximum_cl"`
	MassRatio             RawValue            `yaml:"mass_ratio"`
	ReserveMassRatio      RawValue            `yaml:"reserve_mass_ratio"`
	FrictionCoeff         RawValue            `yaml:"friction_coeff"`
	RotationRate          RawValue            `yaml:"rotation_rate"`
	AlphaLimit            RawValue            `yaml:"alpha_limit"`
}

// PartDecl is one entry of a phase's part list: either an inline
// segment, a reference to a named segment in the top-level segments
// table, or a nested sub-phase (by name).
type PartDecl struct {
	Inline     *SegmentDecl `yaml:"segment,omitempty"`
	SegmentRef string       `yaml:"segment_ref,omitempty"`
	Phase      string       `yaml:"phase,omitempty"`
}

// PhaseDecl is a named phase (spec.md §3, component F): an ordered
// part list plus parameter overrides inherited by every leaf segment
// underneath unless the leaf itself overrides them.
type PhaseDecl struct {
	Parts []PartDecl `yaml:"parts"`

	EngineSetting string   `yaml:"engine_setting,omitempty"`
	Polar         string   `yaml:"polar,omitempty"`
	Propulsion    string   `yaml:"propulsion,omitempty"`
	WingArea      RawValue `yaml:"wing_area,omitempty"`
	TimeStep      RawValue `yaml:"time_step,omitempty"`
	ISAOffset     RawValue `yaml:"isa_offset,omitempty"`
	MaximumCL     RawValue `yaml:"maximum_cl,omitempty"`
}

// RouteDecl is a named route (spec.md §3, component G).
type RouteDecl struct {
	Range            RawValue `yaml:"range"`
	DistanceAccuracy RawValue `yaml:"distance_accuracy"`
	ClimbParts       []string `yaml:"climb_parts"`
	CruisePart       string   `yaml:"cruise_part"`
	DescentParts     []string `yaml:"descent_parts"`
}

// ReserveDecl is a reserve-fuel virtual part (spec.md §3's ReserveRef).
type ReserveDecl struct {
	Ref        string   `yaml:"ref"`
	Multiplier RawValue `yaml:"multiplier"`
}

// MissionPartDecl is one entry of a mission's part list: exactly one
// of Phase, Route or Reserve must be set.
type MissionPartDecl struct {
	Phase   string       `yaml:"phase,omitempty"`
	Route   string       `yaml:"route,omitempty"`
	Reserve *ReserveDecl `yaml:"reserve,omitempty"`
}

// MissionDecl is a named mission (spec.md §3, component H) plus the
// outer block-fuel/TOW reconciliation flags of §4.8.
type MissionDecl struct {
	Parts           []MissionPartDecl `yaml:"parts"`
	ISAOffset       RawValue          `yaml:"isa_offset"`
	UseAllBlockFuel bool              `yaml:"use_all_block_fuel"`
	BlockFuel       RawValue          `yaml:"block_fuel"`
	AdjustFuel      bool              `yaml:"adjust_fuel"`
	ComputeTOW      bool              `yaml:"compute_tow"`
	OWE             RawValue          `yaml:"owe"`
	Payload         RawValue          `yaml:"payload"`
	TOW             RawValue          `yaml:"tow"`
}
