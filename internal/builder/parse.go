package builder

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/avmission/missionperf/internal/missionerr"
)

// Parse decodes a mission declaration file (spec.md §6.1) into a
// Document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, missionerr.Wrap(missionerr.InvalidDeclaration, "", "malformed mission declaration", err)
	}
	if len(doc.Missions) == 0 {
		return nil, missionerr.New(missionerr.InvalidDeclaration, "", "declaration defines no missions")
	}
	return &doc, nil
}

// MissionNames lists the missions a parsed Document declares, for
// callers that need to pick one (e.g. the CLI's --mission flag
// default when the file declares exactly one).
func (d *Document) MissionNames() []string {
	names := make([]string, 0, len(d.Missions))
	for name := range d.Missions {
		names = append(names, name)
	}
	return names
}

// RequireMission looks up a named mission declaration, producing the
// same InvalidDeclaration diagnostic the rest of the builder uses.
func (d *Document) RequireMission(name string) error {
	if _, ok := d.Missions[name]; !ok {
		return missionerr.New(missionerr.InvalidDeclaration, name, fmt.Sprintf("no mission named %q (have: %v)", name, d.MissionNames()))
	}
	return nil
}
