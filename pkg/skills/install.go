package skills

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillrig/skillrig/pkg/config"
	"github.com/skillrig/skillrig/pkg/logger"
	"github.com/skillrig/skillrig/pkg/runner"
	"github.com/skillrig/skillrig/pkg/telemetry"
)

const (
	defaultInstallTimeout = 300 * time.Second
	minInstallTimeout     = 1 * time.Second
	maxInstallTimeout     = 900 * time.Second
)

// InstallResult reports one install attempt. Every stage failure is a
// result, never an error: unknown skill or installer id, command synthesis
// problems, bootstrap failures, and nonzero exits all land here. ExitCode
// is nil when no process ran or the process died without an exit code.
type InstallResult struct {
	Success  bool
	Message  string
	Stdout   string
	Stderr   string
	ExitCode *int
}

// Dispatcher resolves a (skill, installer id) pair to an executable command
// and runs it. No retries: a single failed attempt is reported as-is.
type Dispatcher struct {
	resolver *Resolver
	cfg      *config.Config
	runner   runner.Runner
	lookPath func(string) (string, error)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRunner overrides the process runner (used by tests).
func WithRunner(r runner.Runner) DispatcherOption {
	return func(d *Dispatcher) { d.runner = r }
}

// WithInstallLookPath overrides binary resolution for bootstrap decisions
// (used by tests).
func WithInstallLookPath(fn func(string) (string, error)) DispatcherOption {
	return func(d *Dispatcher) { d.lookPath = fn }
}

// NewDispatcher creates an install dispatcher over the given resolver.
func NewDispatcher(resolver *Resolver, cfg *config.Config, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		cfg:      cfg,
		runner:   runner.New(),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Install resolves the full (unfiltered) skill set and runs the installer
// identified by installerID for skillName. Eligibility does not gate
// installs: a skill excluded for a missing binary is exactly the one whose
// installer needs to run.
func (d *Dispatcher) Install(ctx context.Context, skillName, installerID string, timeout time.Duration) InstallResult {
	return d.InstallFrom(ctx, d.resolver.Resolve(ctx), skillName, installerID, timeout)
}

// InstallFrom is Install over an already resolved entry set.
func (d *Dispatcher) InstallFrom(ctx context.Context, entries map[string]*Entry, skillName, installerID string, timeout time.Duration) InstallResult {
	var result InstallResult
	telemetry.WithSpanFunc(ctx, "skills.install", func(ctx context.Context) {
		result = d.install(ctx, entries, skillName, installerID, timeout)
		telemetry.SetAttributes(ctx, attribute.Bool("install.success", result.Success))
	},
		attribute.String("install.skill", skillName),
		attribute.String("install.id", installerID),
	)
	return result
}

func (d *Dispatcher) install(ctx context.Context, entries map[string]*Entry, skillName, installerID string, timeout time.Duration) InstallResult {
	entry, ok := entries[skillName]
	if !ok {
		return failure(fmt.Sprintf("skill %q not found", skillName))
	}

	spec, ok := entry.FindInstallSpec(installerID)
	if !ok {
		return failure(fmt.Sprintf("installer %q not found for skill %q", installerID, skillName))
	}

	prefs := d.cfg.InstallPreferences()

	argv, err := buildCommand(spec, prefs)
	if err != nil {
		return failure(err.Error())
	}

	if bootstrap := d.bootstrapUV(ctx, spec, prefs, timeout); bootstrap != nil {
		return *bootstrap
	}

	log := logger.G(ctx).WithField("skill", skillName).WithField("installer", installerID)
	log.WithField("command", strings.Join(argv, " ")).Info("Running installer")

	run, err := d.runner.Run(ctx, argv, clampTimeout(timeout))
	if err != nil {
		return failure(err.Error())
	}

	result := InstallResult{
		Stdout:   strings.TrimSpace(run.Stdout),
		Stderr:   strings.TrimSpace(run.Stderr),
		ExitCode: run.Code,
	}
	if run.Code != nil && *run.Code == 0 {
		result.Success = true
		result.Message = "Installed"
	} else {
		result.Message = "Install failed"
		log.WithField("exitCode", run.Code).Warn("Installer exited with failure")
	}
	return result
}

// bootstrapUV handles the one supported bootstrap path: a uv install when
// uv itself is missing. With brew available (and not disabled by
// preference) uv is installed via brew first; a failed sub-install becomes
// the overall result and the original command is never attempted. Without
// brew there is no other bootstrap path. Returns nil when the original
// command may proceed.
func (d *Dispatcher) bootstrapUV(ctx context.Context, spec InstallSpec, prefs config.InstallPreferences, timeout time.Duration) *InstallResult {
	if spec.Kind != "uv" {
		return nil
	}
	if _, err := d.lookPath("uv"); err == nil {
		return nil
	}

	if _, err := d.lookPath("brew"); err != nil || !prefs.BrewPreferred() {
		result := failure("uv is not installed and brew is not available to install it")
		return &result
	}

	logger.G(ctx).Info("Installing uv via brew before running installer")

	run, err := d.runner.Run(ctx, []string{"brew", "install", "uv"}, clampTimeout(timeout))
	if err != nil {
		result := failure(err.Error())
		return &result
	}
	if run.Code == nil || *run.Code != 0 {
		return &InstallResult{
			Message:  "Install failed",
			Stdout:   strings.TrimSpace(run.Stdout),
			Stderr:   strings.TrimSpace(run.Stderr),
			ExitCode: run.Code,
		}
	}
	return nil
}

// buildCommand synthesizes the command line for a spec. A missing payload
// field or an unsupported kind is a synthesis error; no command runs.
func buildCommand(spec InstallSpec, prefs config.InstallPreferences) ([]string, error) {
	switch spec.Kind {
	case "brew":
		if spec.Formula == "" {
			return nil, errors.New("brew installer is missing a formula")
		}
		return []string{"brew", "install", spec.Formula}, nil
	case "node":
		if spec.Package == "" {
			return nil, errors.New("node installer is missing a package")
		}
		switch prefs.PackageManager {
		case "pnpm":
			return []string{"pnpm", "add", "-g", spec.Package}, nil
		case "yarn":
			return []string{"yarn", "global", "add", spec.Package}, nil
		default:
			return []string{"npm", "install", "-g", spec.Package}, nil
		}
	case "go":
		if spec.Module == "" {
			return nil, errors.New("go installer is missing a module")
		}
		return []string{"go", "install", spec.Module}, nil
	case "uv":
		if spec.Package == "" {
			return nil, errors.New("uv installer is missing a package")
		}
		return []string{"uv", "tool", "install", spec.Package}, nil
	default:
		return nil, errors.Errorf("unsupported installer kind %q", spec.Kind)
	}
}

// clampTimeout bounds the requested timeout to [1s, 900s], defaulting to
// 300s when unset.
func clampTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultInstallTimeout
	}
	if timeout < minInstallTimeout {
		return minInstallTimeout
	}
	if timeout > maxInstallTimeout {
		return maxInstallTimeout
	}
	return timeout
}

func failure(message string) InstallResult {
	return InstallResult{Message: message}
}
