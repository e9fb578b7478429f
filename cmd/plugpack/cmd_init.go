package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const starterManifest = `# plugpack manifest
name: KOReader Sync
version: 0.2.3-alpha
import_name: koreader
description: Sync KOReader reading progress into the Calibre library

repo:
  owner: ""
  name: ""

release_dir: releases

include:
  - about.txt
  - LICENSE
  - plugin-import-name-koreader.txt
  - "*.py"
  - "*.md"
  - "images/*.png"

dependencies:
  - name: slpp
    url: https://raw.githubusercontent.com/SirAnthony/slpp/master/slpp.py
    dest: slpp.py
    upstream:
      owner: SirAnthony
      name: slpp

dev:
  customize_bin: calibre-customize
  debug_bin: calibre-debug
`

func runInit(_ context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var (
		dir   = fs.String("dir", ".", "Plugin source directory")
		force = fs.Bool("force", false, "Overwrite an existing manifest")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack init [options]

Write a starter plugpack.yml into the plugin directory.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	manifestPath := filepath.Join(*dir, "plugpack.yml")

	if _, err := os.Stat(manifestPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", manifestPath)
		os.Exit(1)
	}

	if err := os.WriteFile(manifestPath, []byte(starterManifest), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Wrote %s\n", manifestPath)
}
