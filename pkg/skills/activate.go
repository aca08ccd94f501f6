package skills

import (
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skillrig/skillrig/pkg/config"
)

// RestoreFunc undoes an activation, restoring every injected variable to
// its prior state: deleted if it was previously unset, else set back to the
// saved value. Callers must invoke it exactly once, on every exit path of
// the scope that requested activation; it is the only rollback mechanism.
type RestoreFunc func() error

type savedVar struct {
	name    string
	value   string
	existed bool
}

// Activate injects environment variables for the given (already filtered)
// skill set: every configured per-skill env override whose variable is not
// yet set, plus the skill's primary credential variable when configuration
// supplies an API key for it. The prior state of every touched variable is
// recorded before mutation.
//
// Activation mutates process-wide state and is not reentrant-safe against
// overlapping activations touching the same variable names.
func Activate(entries map[string]*Entry, cfg *config.Config) RestoreFunc {
	var saved []savedVar

	for _, name := range SortedNames(entries) {
		entry := entries[name]
		settings, ok := cfg.SkillSettings(entry.ConfigKey())
		if !ok {
			continue
		}

		saved = injectSettings(saved, settings, primaryEnvOf(entry))
	}

	return restoreFunc(saved)
}

// ActivateSnapshot performs the Activate contract from a snapshot's
// lightweight (name, primaryEnv) pairs, for callers holding a serialized
// prompt snapshot rather than live entries.
func ActivateSnapshot(snap *Snapshot, cfg *config.Config) RestoreFunc {
	var saved []savedVar

	for _, skill := range snap.Skills {
		settings, ok := cfg.SkillSettings(skill.Name)
		if !ok {
			continue
		}
		saved = injectSettings(saved, settings, skill.PrimaryEnv)
	}

	return restoreFunc(saved)
}

func primaryEnvOf(entry *Entry) string {
	if entry.Capability == nil {
		return ""
	}
	return entry.Capability.PrimaryEnv
}

// injectSettings applies one skill's env overrides and credential, skipping
// variables the process already has set, and returns the extended undo log.
func injectSettings(saved []savedVar, settings config.SkillSettings, primaryEnv string) []savedVar {
	names := make([]string, 0, len(settings.Env))
	for name := range settings.Env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		saved = inject(saved, name, settings.Env[name])
	}

	if primaryEnv != "" && settings.APIKey != "" {
		saved = inject(saved, primaryEnv, settings.APIKey)
	}

	return saved
}

// inject sets a variable unless the process already has it; variables that
// are already set are never overwritten.
func inject(saved []savedVar, name, value string) []savedVar {
	if _, existed := os.LookupEnv(name); existed {
		return saved
	}
	saved = append(saved, savedVar{name: name})
	os.Setenv(name, value)
	return saved
}

func restoreFunc(saved []savedVar) RestoreFunc {
	return func() error {
		var result *multierror.Error
		for i := len(saved) - 1; i >= 0; i-- {
			v := saved[i]
			var err error
			if v.existed {
				err = os.Setenv(v.name, v.value)
			} else {
				err = os.Unsetenv(v.name)
			}
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "failed to restore %s", v.name))
			}
		}
		return result.ErrorOrNil()
	}
}
