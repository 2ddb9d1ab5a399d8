// Package missionerr defines the error taxonomy of spec.md §7. Kept
// as plain structs implementing error and wrapped with fmt.Errorf's
// %w, the way the teacher's fmt.Errorf-only error handling works
// (jsbsimxmlparser.go, forces_moments.go) — nothing in the retrieval
// pack leans on a third-party error-wrapping library consistently
// enough to justify introducing one here.
package missionerr

import "fmt"

// Kind tags which row of spec.md §7's taxonomy an error belongs to.
type Kind string

const (
	InvalidDeclaration    Kind = "InvalidDeclaration"
	UnresolvedVariable    Kind = "UnresolvedVariable"
	UnitMismatch          Kind = "UnitMismatch"
	ClExceeded            Kind = "ClExceeded"
	RouteUnreachable      Kind = "RouteUnreachable"
	StepLimit             Kind = "StepLimit"
	Unfeasible            Kind = "Unfeasible"
	BlockFuelNotConverged Kind = "BlockFuelNotConverged"
	InvalidMissionStruct  Kind = "InvalidMissionStructure"
)

// Error is a structured diagnostic carrying the mission part name and,
// when applicable, the offending flight point's time (spec.md §7: "no
// error is silently swallowed; all produce a structured diagnostic
// carrying the mission part name").
type Error struct {
	Kind    Kind
	Part    string
	Message string
	At      float64 // offending FlightPoint's time, NaN if not applicable
	Err     error   // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: part %q: %s", e.Kind, e.Part, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error without a wrapped cause.
func New(kind Kind, part, message string) *Error {
	return &Error{Kind: kind, Part: part, Message: message}
}

// Wrap builds an Error wrapping an existing cause.
func Wrap(kind Kind, part, message string, cause error) *Error {
	return &Error{Kind: kind, Part: part, Message: message, Err: cause}
}
