package project

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/modtest/internal/compiler"
	"github.com/vk/modtest/internal/ctxlog"
	"github.com/vk/modtest/internal/exporter"
)

// Compile compiles the given model text as the project's main model. On
// success the resulting types and resources replace the previous compile's,
// the version advances, newly produced file artifacts land in the blob store,
// and anything printed during the compile is retrievable through Stdout and
// Stderr. A compiler failure propagates unchanged.
func (p *Project) Compile(main string) error {
	if err := os.WriteFile(filepath.Join(p.dir, "main.hcl"), []byte(main), 0o644); err != nil {
		return err
	}

	ctx := ctxlog.WithLogger(context.Background(), p.logger)
	refs := compiler.Refs{Facts: p.facts.All()}

	capture, err := startCapture()
	if err != nil {
		return err
	}
	result, compileErr := compiler.Compile(ctx, p.dir, refs)
	p.stdout, p.stderr = capture.stop()

	if compileErr != nil {
		return compileErr
	}

	p.nextVersion++
	version := p.nextVersion

	resources, files := exporter.Export(result, version)
	for key, content := range files {
		if err := p.blobs.Put(key, content, true); err != nil {
			return err
		}
	}

	p.types = result.Types
	p.resources = resources
	p.version = version

	p.logger.Debug("Model compiled.", "version", version, "resources", len(resources))
	return nil
}

// Stdout returns what the last compile printed to standard output.
func (p *Project) Stdout() string {
	return p.stdout
}

// Stderr returns what the last compile printed to standard error.
func (p *Project) Stderr() string {
	return p.stderr
}
