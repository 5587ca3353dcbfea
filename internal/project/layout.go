package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/modtest/internal/plugins"
	"github.com/vk/modtest/internal/schema"
)

func (p *Project) writeProjectManifest() error {
	manifest := schema.ProjectManifest{
		Name:         "testcase",
		Description:  "Project for testcase",
		Repos:        p.opts.repos(),
		ModulePath:   "libs",
		DownloadPath: "libs",
	}
	raw, err := yaml.Marshal(&manifest)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.dir, "project.yml"), raw, 0o644)
}

// CreateModule generates a module skeleton under the project's module path:
// model, files, templates and plugins directories, an initial model file, the
// plugin package marker, and a module manifest.
func (p *Project) CreateModule(name, initModel, initPlugin string) error {
	moduleDir := filepath.Join(p.dir, "libs", name)
	for _, sub := range []string{"", "model", "files", "templates", "plugins"} {
		if err := os.MkdirAll(filepath.Join(moduleDir, sub), 0o755); err != nil {
			return err
		}
	}

	if err := os.WriteFile(filepath.Join(moduleDir, "model", "init.hcl"), []byte(initModel), 0o644); err != nil {
		return err
	}

	if initPlugin == "" {
		initPlugin = "package plugins\n"
	}
	if err := os.WriteFile(filepath.Join(moduleDir, "plugins", plugins.MarkerFile), []byte(initPlugin), 0o644); err != nil {
		return err
	}

	manifest := schema.ModuleManifest{
		Name:    name,
		Version: "0.1",
		License: "Test License",
	}
	raw, err := yaml.Marshal(&manifest)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(moduleDir, "module.yml"), raw, 0o644)
}

// AddMockFile registers a mock file or template in the virtual "unittest"
// module, so models can reference it through the file() function.
func (p *Project) AddMockFile(subdir, name, content string) error {
	dir := filepath.Join(p.dir, "libs", "unittest", subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("cannot write mock file %s/%s: %w", subdir, name, err)
	}
	return nil
}
