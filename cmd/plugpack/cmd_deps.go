package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/plugpack/plugpack/internal/domain-adapters/gateways"
	orchestrators "github.com/plugpack/plugpack/internal/domain-orchestrators"
	"github.com/plugpack/plugpack/internal/domain/entities"
)

func runDeps(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("deps", flag.ExitOnError)
	dir := fs.String("dir", ".", "Plugin source directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack deps [options]

Fetch the manifest's vendored dependencies from their upstream URLs.
A dependency is only overwritten when the remote content is newer than
the local copy; re-running against an unchanged upstream is a no-op.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, logger := bootstrap()
	m := loadManifest(ctx, cfg, *dir)

	if len(m.Dependencies) == 0 {
		fmt.Println("No vendored dependencies declared")
		return
	}

	orch := newOrchestrator(cfg, logger, gateways.NewArchiver(logger), *dir)
	printFetchResults(ctx, orch, m)
}

// printFetchResults runs the fetch workflow and prints one line per
// dependency; a fetch failure exits non-zero
func printFetchResults(ctx context.Context, orch *orchestrators.PackageOrchestrator, m *entities.Manifest) {
	results, err := orch.FetchDependencies(ctx, m)

	for _, r := range results {
		switch r.Status {
		case entities.FetchDownloaded:
			fmt.Printf("⬇️  %s -> %s (%d bytes)\n", r.Dependency, r.Dest, r.Bytes)
		case entities.FetchUpToDate:
			fmt.Printf("✅ %s is up to date\n", r.Dependency)
		case entities.FetchFailed:
			fmt.Printf("❌ %s failed: %s\n", r.Dependency, r.Message)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
