// Package main provides the plugpack CLI for packaging Calibre plugins.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/plugpack/plugpack/internal/config"
	"github.com/plugpack/plugpack/internal/domain/entities"
	"github.com/plugpack/plugpack/internal/domain/interfaces"
	"github.com/plugpack/plugpack/internal/domain/interfaces/repositories"
	"github.com/plugpack/plugpack/internal/external-adapters/yaml"
	"github.com/plugpack/plugpack/internal/external-adapters/zaplog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "all":
		runAll(ctx, os.Args[2:])
	case "zip":
		runZip(ctx, os.Args[2:])
	case "deps":
		runDeps(ctx, os.Args[2:])
	case "dev":
		runDev(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "release":
		runRelease(ctx, os.Args[2:])
	case "monitor":
		runMonitor(ctx, os.Args[2:])
	case "init":
		runInit(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`plugpack - Calibre plugin packaging and release tool

Usage:
  plugpack <command> [options]

Commands:
  all      Fetch dependencies and build the plugin zip (default workflow)
  zip      Build the versioned plugin zip from the declared file set
  deps     Fetch vendored dependencies (only when upstream is newer)
  dev      Reinstall the plugin into Calibre and relaunch the debug GUI
  verify   Verify a built archive against the manifest
  release  Publish the built zip as a GitHub release
  monitor  Check vendored dependencies for upstream updates
  init     Write a starter plugpack.yml

Use "plugpack <command> --help" for more information about a command.`)
}

// bootstrap loads the environment config and builds the logger shared by
// every subcommand
func bootstrap() (*config.Config, interfaces.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := zaplog.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cfg, logger
}

// loadManifest loads the plugin manifest for dir, applying environment
// overrides for the host binaries
func loadManifest(ctx context.Context, cfg *config.Config, dir string) *entities.Manifest {
	var repo repositories.ManifestRepository = yaml.NewManifestRepository()

	m, err := repo.GetManifest(ctx, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.CustomizeBin != "" {
		m.Dev.CustomizeBin = cfg.CustomizeBin
	}
	if cfg.DebugBin != "" {
		m.Dev.DebugBin = cfg.DebugBin
	}

	return m
}
