package skills

import (
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/gobwas/glob"

	"github.com/skillrig/skillrig/pkg/config"
)

// Decision explains why a skill was included or excluded.
type Decision struct {
	Included bool
	Reason   string
}

// Gate decides per-skill eligibility against configuration and the host
// environment.
type Gate struct {
	cfg       *config.Config
	allowed   []glob.Glob
	lookPath  func(string) (string, error)
	lookupEnv func(string) (string, bool)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLookPath overrides binary resolution (used by tests).
func WithLookPath(fn func(string) (string, error)) GateOption {
	return func(g *Gate) { g.lookPath = fn }
}

// WithLookupEnv overrides environment lookup (used by tests).
func WithLookupEnv(fn func(string) (string, bool)) GateOption {
	return func(g *Gate) { g.lookupEnv = fn }
}

// NewGate creates an eligibility gate. Allowlist patterns from
// skills.allowed are compiled as globs; a pattern that fails to compile is
// matched literally.
func NewGate(cfg *config.Config, opts ...GateOption) *Gate {
	g := &Gate{
		cfg:       cfg,
		lookPath:  exec.LookPath,
		lookupEnv: os.LookupEnv,
	}
	if cfg != nil {
		for _, pattern := range cfg.Skills.Allowed {
			compiled, err := glob.Compile(pattern)
			if err != nil {
				compiled = literalGlob(pattern)
			}
			g.allowed = append(g.allowed, compiled)
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type literalGlob string

func (l literalGlob) Match(s string) bool { return string(l) == s }

// Filter returns the subset of entries eligible for prompt inclusion and
// activation.
func (g *Gate) Filter(entries map[string]*Entry) map[string]*Entry {
	eligible := make(map[string]*Entry)
	for name, entry := range entries {
		if g.Evaluate(entry).Included {
			eligible[name] = entry
		}
	}
	return eligible
}

// Evaluate applies the eligibility rules in order; the first matching rule
// decides:
//
//  1. An explicit enabled=false in per-skill configuration excludes the
//     skill unconditionally, even over always=true.
//  2. always=true in capability metadata includes it, skipping all checks.
//  3. Otherwise every requirement across the binary, environment, and
//     configuration lists must be satisfied.
//
// An allowlist, when configured, is applied before the per-skill rules.
func (g *Gate) Evaluate(entry *Entry) Decision {
	if !g.allowlisted(entry.Name) {
		return Decision{Reason: "not in skills.allowed"}
	}

	settings, _ := g.cfg.SkillSettings(entry.ConfigKey())
	if settings.Enabled != nil && !*settings.Enabled {
		return Decision{Reason: "disabled in configuration"}
	}

	cap := entry.Capability
	if cap == nil {
		return Decision{Included: true, Reason: "no requirements declared"}
	}
	if cap.Always {
		return Decision{Included: true, Reason: "always enabled"}
	}

	for _, bin := range cap.Requires.Bins {
		if _, err := g.lookPath(bin); err != nil {
			return Decision{Reason: fmt.Sprintf("missing binary %q", bin)}
		}
	}

	for _, name := range cap.Requires.Env {
		if !g.envSatisfied(name, cap, settings) {
			return Decision{Reason: fmt.Sprintf("missing environment variable %q", name)}
		}
	}

	for _, path := range cap.Requires.Config {
		if !config.Truthy(g.cfg.Lookup(path)) {
			return Decision{Reason: fmt.Sprintf("config %q is not enabled", path)}
		}
	}

	return Decision{Included: true, Reason: "all requirements satisfied"}
}

// envSatisfied reports whether the environment requirement for name holds:
// the process already has it set, per-skill configuration overrides it, or
// it is the skill's primary credential variable and configuration supplies
// an API key for it.
func (g *Gate) envSatisfied(name string, cap *Capability, settings config.SkillSettings) bool {
	if _, ok := g.lookupEnv(name); ok {
		return true
	}
	if settings.Env[name] != "" {
		return true
	}
	return name == cap.PrimaryEnv && settings.APIKey != ""
}

func (g *Gate) allowlisted(name string) bool {
	if len(g.allowed) == 0 {
		return true
	}
	for _, pattern := range g.allowed {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}

// SortedNames returns entry names in lexical order, for deterministic
// listings and prompt output.
func SortedNames(entries map[string]*Entry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
