package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugpack/plugpack/internal/domain-adapters/gateways"
	domainGateways "github.com/plugpack/plugpack/internal/domain/interfaces/gateways"
	"github.com/plugpack/plugpack/internal/domain/services"
	"github.com/plugpack/plugpack/internal/external-adapters/github"
)

func runRelease(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("release", flag.ExitOnError)
	var (
		dir       = fs.String("dir", ".", "Plugin source directory")
		draft     = fs.Bool("draft", false, "Create as draft release")
		notesFile = fs.String("notes-file", "", "File with release notes (markdown)")
		dryRun    = fs.Bool("dry-run", false, "Show what would be released without actually releasing")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack release [options]

Publish the built plugin zip (plus checksum sidecars) as a GitHub
release tagged v<version>. Requires a token in PLUGPACK_GITHUB_TOKEN,
GITHUB_TOKEN or GH_TOKEN. Versions with an alpha/beta/rc suffix are
marked as pre-releases automatically.

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

	if m.Repo.Owner == "" || m.Repo.Name == "" {
		fmt.Fprintf(os.Stderr, "Error: manifest must declare repo.owner and repo.name for releases\n")
		os.Exit(1)
	}

	archivePath := filepath.Join(*dir, m.ArchivePath())

	// Refuse to publish an archive that does not match the manifest
	archiver := gateways.NewArchiver(logger)
	orch := newOrchestrator(cfg, logger, archiver, *dir)

	expected, err := orch.ResolveMembers(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	actual, err := archiver.ListArchive(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (run the zip command first)\n", err)
		os.Exit(1)
	}

	validation := services.NewReleaseService().ValidateArchive(m, archivePath, actual, expected)
	if !validation.IsReady() {
		fmt.Fprintf(os.Stderr, "❌ %s\n", validation.ErrorMessage())
		os.Exit(1)
	}

	assets := []string{archivePath}
	for _, ext := range []string{".sha256", ".sha512"} {
		if _, err := os.Stat(archivePath + ext); err == nil {
			assets = append(assets, archivePath+ext)
		}
	}

	opts := domainGateways.PublishOptions{
		Tag:        m.Tag(),
		Name:       fmt.Sprintf("%s v%s", m.Name, m.Version),
		Draft:      *draft,
		Prerelease: services.IsPrerelease(m.Version),
		Assets:     assets,
	}

	if *notesFile != "" {
		//nolint:gosec // G304: notes file path is an explicit user flag
		notes, err := os.ReadFile(*notesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading notes file: %v\n", err)
			os.Exit(1)
		}
		opts.Notes = string(notes)
	}

	if *dryRun {
		fmt.Printf("Would create release %s on %s/%s with assets:\n", opts.Tag, m.Repo.Owner, m.Repo.Name)
		for _, a := range assets {
			fmt.Printf("  - %s\n", filepath.Base(a))
		}
		return
	}

	if cfg.GitHubToken == "" {
		fmt.Fprintf(os.Stderr, "Error: a GitHub token is required to publish releases\n")
		os.Exit(1)
	}

	publisher := github.New(ctx, cfg.GitHubToken)

	exists, err := publisher.ReleaseExists(ctx, m.Repo.Owner, m.Repo.Name, opts.Tag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if exists {
		fmt.Fprintf(os.Stderr, "❌ Release %s already exists on %s/%s\n", opts.Tag, m.Repo.Owner, m.Repo.Name)
		os.Exit(1)
	}

	published, err := publisher.PublishRelease(ctx, m.Repo.Owner, m.Repo.Name, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Published %s (%d assets)\n", published.TagName, len(published.Assets))
	if published.HTMLURL != "" {
		fmt.Println(published.HTMLURL)
	}
}
