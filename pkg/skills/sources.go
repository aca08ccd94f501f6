package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillrig/skillrig/pkg/config"
	"github.com/skillrig/skillrig/pkg/logger"
	"github.com/skillrig/skillrig/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Source tags identify where a merged skill came from. Sources are applied
// in ascending precedence: extra loses every tie, workspace wins every tie.
const (
	SourceExtra     = "extra"
	SourceBundled   = "bundled"
	SourceManaged   = "managed"
	SourceWorkspace = "workspace"
)

// BundledDirEnv overrides bundled-skill directory discovery.
const BundledDirEnv = "SKILLRIG_BUNDLED_SKILLS_DIR"

// Resolver merges skills from the four ranked sources and annotates each
// surviving entry with its declaration block and capability metadata.
type Resolver struct {
	workspaceDir string
	extraDirs    []string
	bundledDir   string // empty means "discover"
	managedDir   string // empty means "~/.skillrig/skills"
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithExtraDirs sets the user-configured extra skill directories.
func WithExtraDirs(dirs ...string) ResolverOption {
	return func(r *Resolver) { r.extraDirs = dirs }
}

// WithBundledDir pins the bundled skill directory, bypassing discovery.
func WithBundledDir(dir string) ResolverOption {
	return func(r *Resolver) { r.bundledDir = dir }
}

// WithManagedDir overrides the per-user managed skill directory.
func WithManagedDir(dir string) ResolverOption {
	return func(r *Resolver) { r.managedDir = dir }
}

// NewResolver creates a resolver for the given workspace. Extra directories
// come from configuration unless overridden by options.
func NewResolver(workspaceDir string, cfg *config.Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{workspaceDir: workspaceDir}
	if cfg != nil {
		r.extraDirs = cfg.Skills.ExtraDirs
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads all four sources, merges them last-writer-wins by skill
// name, and annotates the survivors. The result is rebuilt from disk on
// every call.
func (r *Resolver) Resolve(ctx context.Context) map[string]*Entry {
	entries := make(map[string]*Entry)

	telemetry.WithSpanFunc(ctx, "skills.resolve", func(ctx context.Context) {
		for _, src := range r.sources() {
			if src.dir == "" {
				continue
			}
			for _, record := range LoadDir(ctx, src.dir, src.tag) {
				entries[record.Name] = &Entry{Record: record}
			}
		}

		for _, entry := range entries {
			annotate(ctx, entry)
		}

		telemetry.SetAttributes(ctx, attribute.Int("skills.count", len(entries)))
	})

	return entries
}

type source struct {
	tag string
	dir string
}

func (r *Resolver) sources() []source {
	var sources []source
	for _, dir := range r.extraDirs {
		sources = append(sources, source{SourceExtra, expandHome(dir)})
	}
	sources = append(sources,
		source{SourceBundled, r.resolveBundledDir()},
		source{SourceManaged, r.resolveManagedDir()},
		source{SourceWorkspace, filepath.Join(r.workspaceDir, "skills")},
	)
	return sources
}

// resolveBundledDir finds the bundled skill directory: an explicit override
// (option or environment), else a skills directory next to the running
// executable, else the conventional share path relative to it. The first
// existing directory wins; none existing is a valid outcome.
func (r *Resolver) resolveBundledDir() string {
	if r.bundledDir != "" {
		return r.bundledDir
	}
	if override := os.Getenv(BundledDirEnv); override != "" {
		return override
	}

	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	exeDir := filepath.Dir(exe)

	candidates := []string{
		filepath.Join(exeDir, "skills"),
		filepath.Join(exeDir, "..", "share", "skillrig", "skills"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

func (r *Resolver) resolveManagedDir() string {
	if r.managedDir != "" {
		return r.managedDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".skillrig", "skills")
}

func expandHome(dir string) string {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return dir
		}
		return filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
	}
	return dir
}

// annotate attaches the parsed declaration and capability metadata to an
// entry. A read or parse failure degrades this entry to "no metadata"
// without affecting the rest of the merge.
func annotate(ctx context.Context, entry *Entry) {
	content, err := os.ReadFile(entry.Path)
	if err != nil {
		logger.G(ctx).WithError(errors.Wrap(err, "failed to read skill source")).
			WithField("skill", entry.Name).Debug("Skill left without metadata")
		entry.Declaration = map[string]string{}
		return
	}

	entry.Declaration = ParseDeclaration(string(content))
	entry.Capability = DecodeCapability(entry.Declaration)
}
