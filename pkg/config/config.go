// Package config loads the skillrig configuration file and exposes it both
// as typed sections (per-skill settings, install preferences) and as a raw
// tree addressable by dotted paths. The tree is read-only; skillrig never
// writes configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SkillSettings is the per-skill section of the configuration, keyed by the
// skill's config key (the skill name unless its metadata overrides skillKey).
type SkillSettings struct {
	// Enabled distinguishes "explicitly disabled" from "not mentioned";
	// only an explicit false excludes a skill.
	Enabled *bool             `mapstructure:"enabled"`
	Env     map[string]string `mapstructure:"env"`
	APIKey  string            `mapstructure:"apiKey"`
}

// InstallPreferences selects how installer commands are synthesized.
type InstallPreferences struct {
	// PackageManager is the node package manager: npm, pnpm, or yarn.
	PackageManager string `mapstructure:"packageManager"`
	PreferBrew     *bool  `mapstructure:"preferBrew"`
}

// SkillsConfig is the typed view of the "skills" section.
type SkillsConfig struct {
	Enabled   *bool                    `mapstructure:"enabled"`
	Allowed   []string                 `mapstructure:"allowed"`
	ExtraDirs []string                 `mapstructure:"extraDirs"`
	Entries   map[string]SkillSettings `mapstructure:"entries"`
	Install   InstallPreferences       `mapstructure:"install"`
}

// Config holds the loaded configuration tree plus its decoded sections.
type Config struct {
	tree   map[string]any
	Skills SkillsConfig
}

// defaultValues backs Lookup for paths the configuration leaves undefined.
// It is a package-level table so deployments can seed additional defaults
// via SetDefault before resolution runs.
var defaultValues = map[string]any{
	"skills.enabled": true,
}

// SetDefault registers a fallback value for a dotted configuration path.
func SetDefault(path string, value any) {
	defaultValues[path] = value
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, ".skillrig", "config.yaml"), nil
}

// Load reads and decodes the configuration file at path. A missing file is
// not an error: it yields an empty configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FromTree(nil), nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return FromTree(tree), nil
}

// FromTree builds a Config from an in-memory tree. Sections that fail to
// decode are left zero-valued; the raw tree remains available via Lookup.
func FromTree(tree map[string]any) *Config {
	c := &Config{tree: tree}
	if skills, ok := tree["skills"]; ok {
		_ = mapstructure.Decode(skills, &c.Skills)
	}
	return c
}

// Lookup resolves a dotted path through the configuration tree, failing
// safely to the defaults table (and then nil) when any intermediate node
// is missing or not a map.
func (c *Config) Lookup(path string) any {
	if v, ok := lookupTree(c.rawTree(), path); ok {
		return v
	}
	if v, ok := defaultValues[path]; ok {
		return v
	}
	return nil
}

func (c *Config) rawTree() map[string]any {
	if c == nil {
		return nil
	}
	return c.tree
}

func lookupTree(tree map[string]any, path string) (any, bool) {
	var current any = tree
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SkillSettings returns the per-skill settings for the given config key.
func (c *Config) SkillSettings(key string) (SkillSettings, bool) {
	if c == nil || c.Skills.Entries == nil {
		return SkillSettings{}, false
	}
	settings, ok := c.Skills.Entries[key]
	return settings, ok
}

// InstallPreferences returns the resolved install preferences: npm unless
// another supported package manager is configured, brew preferred unless
// explicitly turned off.
func (c *Config) InstallPreferences() InstallPreferences {
	prefs := InstallPreferences{PackageManager: "npm"}
	if c == nil {
		return prefs
	}
	switch c.Skills.Install.PackageManager {
	case "npm", "pnpm", "yarn":
		prefs.PackageManager = c.Skills.Install.PackageManager
	}
	prefs.PreferBrew = c.Skills.Install.PreferBrew
	return prefs
}

// BrewPreferred reports whether brew may be used for bootstrap installs.
func (p InstallPreferences) BrewPreferred() bool {
	return p.PreferBrew == nil || *p.PreferBrew
}

// Truthy implements the configuration truthiness semantics: nil is false,
// booleans are themselves, numbers are true when nonzero, strings are true
// when non-empty after trimming, and any other value is true.
func Truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case int:
		return value != 0
	case int64:
		return value != 0
	case uint64:
		return value != 0
	case float64:
		return value != 0
	case float32:
		return value != 0
	case string:
		return strings.TrimSpace(value) != ""
	default:
		return true
	}
}
