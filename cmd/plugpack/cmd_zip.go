package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugpack/plugpack/internal/config"
	"github.com/plugpack/plugpack/internal/domain-adapters/gateways"
	orchestrators "github.com/plugpack/plugpack/internal/domain-orchestrators"
	"github.com/plugpack/plugpack/internal/domain/interfaces"
	"github.com/plugpack/plugpack/internal/external-adapters/gpg"
)

func runAll(ctx context.Context, args []string) {
	runPackage(ctx, "all", args, true)
}

func runZip(ctx context.Context, args []string) {
	runPackage(ctx, "zip", args, false)
}

func runPackage(ctx context.Context, name string, args []string, withDeps bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	dir := fs.String("dir", ".", "Plugin source directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack %s [options]

Build the versioned plugin zip from the manifest's declared file set.
The "all" command fetches vendored dependencies first.

Examples:
  plugpack all
  plugpack zip --dir ~/src/my-plugin

Options:
`, name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, logger := bootstrap()
	m := loadManifest(ctx, cfg, *dir)

	archiver := gateways.NewArchiver(logger)
	orch := newOrchestrator(cfg, logger, archiver, *dir)

	if withDeps {
		printFetchResults(ctx, orch, m)
	}

	archivePath := filepath.Join(*dir, m.ArchivePath())

	// Status line before the build, mirroring the old Makefile target
	fmt.Printf("Before: %s\n", archiver.Describe(archivePath))

	artifact, sidecars, err := orch.BuildArchive(ctx, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("After:  %s\n\n", archiver.Describe(artifact.Path))

	fmt.Printf("✅ Built %s (%d members)\n", artifact.Path, len(artifact.Members))
	fmt.Printf("  - %s\n", filepath.Base(sidecars.SHA256Path))
	fmt.Printf("  - %s\n", filepath.Base(sidecars.SHA512Path))
}

// newOrchestrator wires the gateways into a package orchestrator
func newOrchestrator(cfg *config.Config, logger interfaces.Logger, archiver *gateways.Archiver, dir string) *orchestrators.PackageOrchestrator {
	return orchestrators.NewPackageOrchestrator(
		gateways.NewFetcher(cfg.HTTPTimeout, logger),
		archiver,
		gateways.NewChecksumVerifier(),
		gpg.NewVerifier(),
		logger,
		orchestrators.PackageOrchestratorConfig{Root: dir},
	)
}
