// Package project provides the test-facing façade for unit-testing
// configuration modules: it assembles a throwaway project around the module
// under test, compiles model snippets into typed resources, and simulates
// deploying them through the handler framework against a mock agent.
//
// One Project serves one test session. Init resets the mutable compile and
// deploy state between individual tests; Close tears the backing directory
// down at session end.
package project

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/modtest/internal/blobstore"
	"github.com/vk/modtest/internal/ctxlog"
	"github.com/vk/modtest/internal/factstore"
	"github.com/vk/modtest/internal/fsutil"
	"github.com/vk/modtest/internal/model"
	"github.com/vk/modtest/internal/plugins"
)

// Project coordinates compilation and deployment for a module under test.
type Project struct {
	opts   Options
	logger *slog.Logger

	dir        string
	moduleDir  string
	moduleName string

	types     map[string]*model.Type
	resources map[string]*model.Resource
	version   int
	// nextVersion is monotonic for the whole session; Init resets the
	// published version but never rewinds the counter.
	nextVersion int

	blobs   *blobstore.Store
	facts   *factstore.Store
	plugins *plugins.Registry

	stdout string
	stderr string
}

// New creates a test project in a fresh temporary directory: it writes the
// project manifest, copies the module under test into the module path,
// generates the virtual "unittest" module, and loads the module's plugins.
func New(opts Options) (*Project, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "modtest-project-*")
	if err != nil {
		return nil, err
	}

	p := &Project{
		opts:      o,
		logger:    o.Logger,
		dir:       dir,
		resources: make(map[string]*model.Resource),
		blobs:     blobstore.New(),
		facts:     factstore.New(),
	}

	if err := p.scaffold(); err != nil {
		p.Close()
		return nil, err
	}

	ctx := ctxlog.WithLogger(context.Background(), p.logger)
	registry, err := plugins.Load(ctx, p.moduleDir)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.plugins = registry

	p.logger.Debug("Test project created.", "dir", p.dir, "module", p.moduleName)
	return p, nil
}

// scaffold builds the on-disk project layout.
func (p *Project) scaffold() error {
	if err := os.Mkdir(filepath.Join(p.dir, "libs"), 0o755); err != nil {
		return err
	}

	if p.opts.EnvPath != "" {
		link := filepath.Join(p.dir, ".env")
		if err := os.Symlink(p.opts.EnvPath, link); err != nil {
			p.logger.Error("Unable to use shared env, symlink creation failed.",
				"from", p.opts.EnvPath, "to", link, "error", err)
			return err
		}
	}

	if err := p.writeProjectManifest(); err != nil {
		return err
	}

	moduleDir, moduleName, err := findModule(p.opts.WorkDir)
	if err != nil {
		return err
	}
	p.moduleDir = moduleDir
	p.moduleName = moduleName

	if err := fsutil.CopyTree(moduleDir, filepath.Join(p.dir, "libs", moduleName)); err != nil {
		return err
	}

	return p.CreateModule("unittest", "", "")
}

// Init resets the mutable compile and deploy state. It is intended to run
// before each test function sharing this project.
func (p *Project) Init() {
	p.types = nil
	p.resources = make(map[string]*model.Resource)
	p.version = 0
	p.facts.Reset()
	p.blobs.Reset()
	p.stdout = ""
	p.stderr = ""
}

// Dir returns the backing project directory.
func (p *Project) Dir() string {
	return p.dir
}

// ModuleName returns the name of the module under test.
func (p *Project) ModuleName() string {
	return p.moduleName
}

// Close removes the backing project directory. Removal failure is logged as a
// warning and never propagated, so one session's teardown cannot fail a suite.
func (p *Project) Close() {
	if err := os.RemoveAll(p.dir); err != nil {
		p.logger.Warn("Cannot clean up test project. This can happen when a loaded "+
			"shared environment still maps files in it; use a shared env via MODTEST_ENV.",
			"dir", p.dir, "error", err)
	}
}
