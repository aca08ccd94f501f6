// Package skills implements skill discovery, eligibility, activation, and
// dependency installation. Skills are directories containing a SKILL.md file
// whose frontmatter names the skill and optionally carries machine-readable
// capability metadata: hard requirements (binaries, environment variables,
// configuration switches) and installer specs for missing dependencies.
package skills

import "fmt"

// Record is a skill as produced by the content loader: the frontmatter
// identity plus where it lives on disk. Records are never mutated after
// loading.
type Record struct {
	Name        string // Unique name from frontmatter
	Description string // Brief description for model decision-making
	Directory   string // Full path to the skill directory
	Path        string // Full path to the SKILL.md file
	Source      string // Which ranked source the record came from
}

// Entry is the unit the engine operates on: a loaded record annotated with
// its parsed declaration block and decoded capability metadata. Entries are
// rebuilt on every resolution pass; nothing is cached between passes.
type Entry struct {
	Record
	Declaration map[string]string
	Capability  *Capability
}

// Capability is the decoded machine-readable metadata of a skill.
type Capability struct {
	// Always bypasses all requirement checks (but not an explicit
	// enabled=false in configuration).
	Always bool
	// SkillKey overrides the key used to look up per-skill configuration;
	// empty means the skill's own name.
	SkillKey string
	// PrimaryEnv is the environment variable the skill's API key populates.
	PrimaryEnv string
	Requires   Requirements
	Install    []InstallSpec
}

// Requirements are three independent lists; a skill is eligible only when
// every requirement across all three holds. Empty lists hold trivially.
type Requirements struct {
	Bins   []string // executables that must be on PATH
	Env    []string // environment variables that must be satisfiable
	Config []string // dotted config paths that must resolve truthy
}

// InstallSpec is one way to install a skill's runtime dependency.
type InstallSpec struct {
	ID    string
	Kind  string // brew, node, go, or uv
	Label string
	Bins  []string
	// Kind-specific payload.
	Formula string // brew
	Package string // node, uv
	Module  string // go
}

// EffectiveID returns the spec's stable identifier: the explicit id if one
// was declared, else "<kind>-<index>" from its position in the install list.
func (s InstallSpec) EffectiveID(index int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("%s-%d", s.Kind, index)
}

// ConfigKey returns the key used to look up per-skill configuration.
func (e *Entry) ConfigKey() string {
	if e.Capability != nil && e.Capability.SkillKey != "" {
		return e.Capability.SkillKey
	}
	return e.Name
}

// FindInstallSpec resolves an installer by its effective id. Callers must
// resolve by id rather than list index: an id-less spec's computed id is a
// function of its current position.
func (e *Entry) FindInstallSpec(id string) (InstallSpec, bool) {
	if e.Capability == nil {
		return InstallSpec{}, false
	}
	for i, spec := range e.Capability.Install {
		if spec.EffectiveID(i) == id {
			return spec, true
		}
	}
	return InstallSpec{}, false
}
