package skills

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SnapshotSkill is the lightweight per-skill record kept in a snapshot:
// just enough to re-activate credentials without the full entry.
type SnapshotSkill struct {
	Name       string `yaml:"name"`
	PrimaryEnv string `yaml:"primaryEnv,omitempty"`
}

// Snapshot captures an eligible skill set at a point in time: the rendered
// prompt plus the (name, primaryEnv) pairs needed by ActivateSnapshot.
type Snapshot struct {
	ID        string          `yaml:"id"`
	CreatedAt time.Time       `yaml:"createdAt"`
	Prompt    string          `yaml:"prompt"`
	Skills    []SnapshotSkill `yaml:"skills"`
}

// NewSnapshot builds a snapshot of the given (already filtered) entries.
func NewSnapshot(entries map[string]*Entry) *Snapshot {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Prompt:    FormatForPrompt(entries),
	}
	for _, name := range SortedNames(entries) {
		snap.Skills = append(snap.Skills, SnapshotSkill{
			Name:       name,
			PrimaryEnv: primaryEnvOf(entries[name]),
		})
	}
	return snap
}

// Save writes the snapshot as YAML.
func (s *Snapshot) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to marshal snapshot")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write snapshot")
}

// LoadSnapshot reads a snapshot written by Save.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot")
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to parse snapshot")
	}
	return &snap, nil
}
