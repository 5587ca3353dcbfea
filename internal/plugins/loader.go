package plugins

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/vk/modtest/internal/ctxlog"
)

// MarkerFile is the package marker every plugins directory must carry, the
// analog of a package init file.
const MarkerFile = "init.go"

// Load builds the plugin registry for the module rooted at moduleDir.
//
// A module without a plugins/ directory yields an empty registry. A plugins/
// directory without its package marker is a setup error. Otherwise every .go
// file directly inside the directory is interpreted in lexicographic order and
// its top-level functions are collected; a name defined in two files resolves
// to the later file.
func Load(ctx context.Context, moduleDir string) (*Registry, error) {
	logger := ctxlog.FromContext(ctx)
	pluginDir := filepath.Join(moduleDir, "plugins")

	if _, err := os.Stat(pluginDir); os.IsNotExist(err) {
		logger.Debug("Module has no plugins directory.", "module", moduleDir)
		return NewRegistry(), nil
	}
	if _, err := os.Stat(filepath.Join(pluginDir, MarkerFile)); err != nil {
		return nil, fmt.Errorf("plugins directory %s is missing its %s package marker", pluginDir, MarkerFile)
	}

	entries, err := os.ReadDir(pluginDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read plugins directory %s: %w", pluginDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	registry := NewRegistry()
	for _, name := range files {
		path := filepath.Join(pluginDir, name)
		if err := loadFile(path, registry); err != nil {
			return nil, err
		}
	}

	logger.Debug("Plugin registry loaded.", "dir", pluginDir, "functions", len(registry.funcs))
	return registry, nil
}

// loadFile interprets a single plugin source file and registers its top-level
// functions. Each file gets a fresh interpreter so state cannot leak between
// files; last write wins across files by load order.
func loadFile(path string, registry *Registry) error {
	pkgName, funcNames, err := topLevelFunctions(path)
	if err != nil {
		return err
	}
	if len(funcNames) == 0 {
		return nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("plugin interpreter setup for %s: %w", path, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return fmt.Errorf("cannot interpret plugin file %s: %w", path, err)
	}

	for _, fname := range funcNames {
		v, err := i.Eval(pkgName + "." + fname)
		if err != nil {
			return fmt.Errorf("cannot resolve plugin function %s in %s: %w", fname, path, err)
		}
		registry.add(&Function{name: fname, file: path, fn: v})
	}
	return nil
}

// topLevelFunctions parses a plugin file and returns its package name and the
// names of its top-level functions, in declaration order. Methods and init
// functions are skipped.
func topLevelFunctions(path string) (string, []string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return "", nil, fmt.Errorf("cannot parse plugin file %s: %w", path, err)
	}

	var names []string
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Name.Name == "init" {
			continue
		}
		names = append(names, fn.Name.Name)
	}
	return file.Name.Name, names, nil
}
