package project

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/modtest/internal/handler"
)

// Environment fallbacks for options that are usually wired through test-runner
// flags.
const (
	// EnvSharedEnv names a shared virtual environment directory to symlink as
	// .env instead of building one per project.
	EnvSharedEnv = "MODTEST_ENV"
	// EnvModuleRepo is a space-separated list of module source repositories.
	EnvModuleRepo = "MODTEST_MODULE_REPO"
)

// DefaultModuleRepo is the repository host used when none is configured.
const DefaultModuleRepo = "https://github.com/inmanta/"

// Options configures a Project.
type Options struct {
	// WorkDir is the directory the tests run from; the module under test is
	// located by walking up from here to the nearest module.yml. Defaults to
	// the current working directory at construction time.
	WorkDir string
	// EnvPath is a shared environment directory symlinked into the project as
	// .env. Falls back to MODTEST_ENV; empty means none.
	EnvPath string
	// ModuleRepo is a space-separated repository list for project.yml. Falls
	// back to MODTEST_MODULE_REPO, then DefaultModuleRepo.
	ModuleRepo string
	// Commander is the handler-dispatch registry used for deployments.
	// Defaults to handler.DefaultCommander.
	Commander *handler.Commander
	// Out receives diagnostic dumps on status mismatches. Defaults to
	// os.Stdout.
	Out io.Writer
	// Logger receives the harness's own logs. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return o, err
		}
		o.WorkDir = wd
	}
	if o.EnvPath == "" {
		o.EnvPath = os.Getenv(EnvSharedEnv)
	}
	if o.ModuleRepo == "" {
		o.ModuleRepo = os.Getenv(EnvModuleRepo)
	}
	if o.ModuleRepo == "" {
		o.ModuleRepo = DefaultModuleRepo
	}
	if o.Commander == nil {
		o.Commander = handler.DefaultCommander
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}

// repos splits the configured repository list.
func (o Options) repos() []string {
	return strings.Fields(o.ModuleRepo)
}
