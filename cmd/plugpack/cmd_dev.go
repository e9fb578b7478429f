package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugpack/plugpack/internal/domain-adapters/gateways"
)

func runDev(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("dev", flag.ExitOnError)
	var (
		dir        = fs.String("dir", ".", "Plugin source directory")
		skipLaunch = fs.Bool("skip-launch", false, "Reinstall the plugin without relaunching the debug GUI")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack dev [options]

Reinstall the plugin from the working tree into the local Calibre
installation (calibre-customize -b) and relaunch Calibre in debug/GUI
mode (calibre-debug -g).

The calibre binaries can be overridden in the manifest's dev section or
with PLUGPACK_CALIBRE_CUSTOMIZE / PLUGPACK_CALIBRE_DEBUG.

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

	absDir, err := filepath.Abs(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	executor := gateways.NewHostExecutor(logger)

	fmt.Printf("🔌 Installing %s from %s\n", m.Name, absDir)
	if err := executor.InstallPlugin(ctx, m.Dev, absDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Plugin installed")

	if *skipLaunch {
		return
	}

	fmt.Println("🚀 Launching debug GUI (blocks until Calibre exits)")
	if err := executor.LaunchDebugGUI(ctx, m.Dev, absDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
