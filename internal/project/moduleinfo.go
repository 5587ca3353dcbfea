package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/modtest/internal/schema"
)

// findModule walks up from workDir to the nearest directory carrying a
// module.yml and returns its path and declared module name. Module test cases
// must live inside the module they test.
func findModule(workDir string) (dir string, name string, err error) {
	current, err := filepath.Abs(workDir)
	if err != nil {
		return "", "", err
	}

	for {
		manifest := filepath.Join(current, "module.yml")
		if _, statErr := os.Stat(manifest); statErr == nil {
			moduleName, readErr := readModuleName(manifest)
			if readErr != nil {
				return "", "", readErr
			}
			return current, moduleName, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", "", fmt.Errorf(
				"module test cases have to be saved in the module they are intended for: %s is not part of a module path", workDir)
		}
		current = parent
	}
}

func readModuleName(manifestPath string) (string, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("cannot read module manifest %s: %w", manifestPath, err)
	}
	var manifest schema.ModuleManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return "", fmt.Errorf("invalid module manifest %s: %w", manifestPath, err)
	}
	if manifest.Name == "" {
		return "", fmt.Errorf("module manifest %s does not declare a name", manifestPath)
	}
	return manifest.Name, nil
}
