package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugpack/plugpack/internal/domain-adapters/gateways"
	"github.com/plugpack/plugpack/internal/domain/services"
)

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var (
		dir     = fs.String("dir", ".", "Plugin source directory")
		archive = fs.String("archive", "", "Archive to verify (defaults to the manifest's versioned path)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack verify [options]

Verify a built plugin archive against the manifest:
  - the archive sits at the versioned release path
  - its member list equals exactly the declared glob set as resolved
    against the working tree right now
  - the checksum sidecars match the archive

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

	archivePath := *archive
	if archivePath == "" {
		archivePath = filepath.Join(*dir, m.ArchivePath())
	}

	fmt.Printf("🔍 Verifying %s\n\n", filepath.Base(archivePath))

	archiver := gateways.NewArchiver(logger)
	orch := newOrchestrator(cfg, logger, archiver, *dir)

	expected, err := orch.ResolveMembers(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	releaseService := services.NewReleaseService()

	if _, err := os.Stat(archivePath); err != nil {
		validation := releaseService.ValidateArchive(m, "", nil, expected)
		fmt.Fprintf(os.Stderr, "❌ %s\n", validation.ErrorMessage())
		os.Exit(1)
	}

	actual, err := archiver.ListArchive(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	validation := releaseService.ValidateArchive(m, archivePath, actual, expected)
	if !validation.IsReady() {
		fmt.Fprintf(os.Stderr, "❌ %s\n", validation.ErrorMessage())
		os.Exit(1)
	}
	fmt.Printf("✅ Member list matches (%d members)\n", len(actual))

	if failed := verifySidecars(ctx, archivePath); failed > 0 {
		os.Exit(1)
	}

	fmt.Println("\n✅ Archive verified")
}

// verifySidecars checks whichever checksum sidecars exist next to the
// archive; returns the number of failures
func verifySidecars(ctx context.Context, archivePath string) int {
	artifactsService := services.NewChecksumArtifactsService()
	verifier := gateways.NewChecksumVerifier()
	failed := 0

	for _, ext := range []string{".sha256", ".sha512"} {
		sidecarPath := archivePath + ext
		if _, err := os.Stat(sidecarPath); err != nil {
			continue
		}

		expectedSum, err := artifactsService.ParseChecksumFile(sidecarPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", filepath.Base(sidecarPath), err)
			failed++
			continue
		}

		if err := verifier.VerifySidecarSum(ctx, archivePath, expectedSum); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", filepath.Base(sidecarPath), err)
			failed++
			continue
		}

		fmt.Printf("✅ %s verified\n", filepath.Base(sidecarPath))
	}

	return failed
}
