// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/plugpack/plugpack/internal/domain/entities"
	"github.com/plugpack/plugpack/internal/domain/interfaces"
	"github.com/plugpack/plugpack/internal/domain/services"
)

// DependencyFetcher interface for conditionally downloading dependencies
type DependencyFetcher interface {
	FetchDependency(ctx context.Context, dep entities.Dependency, root string, verify func(ctx context.Context, path string) error) (*entities.FetchResult, error)
}

// ArchiveBuilder interface for building and inspecting plugin archives
type ArchiveBuilder interface {
	BuildArchive(ctx context.Context, root string, members []string, outPath string) (*entities.Artifact, error)
	ListArchive(path string) ([]string, error)
}

// ChecksumVerifier interface for verifying file digests
type ChecksumVerifier interface {
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
}

// SignatureVerifier interface for verifying detached dependency signatures
type SignatureVerifier interface {
	VerifyDependency(ctx context.Context, filePath string, cfg entities.SignatureConfig) error
}

// PackageOrchestrator coordinates the plugin packaging workflow:
// dependency fetch, archive build, checksum sidecars
type PackageOrchestrator struct {
	fetcher    DependencyFetcher
	archiver   ArchiveBuilder
	checksums  ChecksumVerifier
	signatures SignatureVerifier
	fileset    *services.FileSetService
	artifacts  *services.ChecksumArtifactsService
	logger     interfaces.Logger
	root       string
}

// PackageOrchestratorConfig holds configuration for the orchestrator
type PackageOrchestratorConfig struct {
	// Root is the plugin source directory (defaults to ".")
	Root string
}

// NewPackageOrchestrator creates a new package orchestrator
func NewPackageOrchestrator(
	fetcher DependencyFetcher,
	archiver ArchiveBuilder,
	checksums ChecksumVerifier,
	signatures SignatureVerifier,
	logger interfaces.Logger,
	config PackageOrchestratorConfig,
) *PackageOrchestrator {
	root := config.Root
	if root == "" {
		root = "."
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &PackageOrchestrator{
		fetcher:    fetcher,
		archiver:   archiver,
		checksums:  checksums,
		signatures: signatures,
		fileset:    services.NewFileSetService(),
		artifacts:  services.NewChecksumArtifactsService(),
		logger:     logger,
		root:       root,
	}
}

// RunReport summarizes a packaging run
type RunReport struct {
	RunID    string
	Fetches  []*entities.FetchResult
	Artifact *entities.Artifact
	Sidecars *services.ChecksumArtifacts
	Duration time.Duration
	Success  bool
	Error    error
}

// FetchDependencies runs the conditional fetch for every manifest
// dependency. Verification (checksum, then signature) happens against the
// temporary download, so a failed dependency never replaces a good copy.
func (o *PackageOrchestrator) FetchDependencies(ctx context.Context, m *entities.Manifest) ([]*entities.FetchResult, error) {
	results := make([]*entities.FetchResult, 0, len(m.Dependencies))

	for _, dep := range m.Dependencies {
		dep := dep
		verify := func(ctx context.Context, path string) error {
			if dep.SHA256 != "" {
				if err := o.checksums.VerifyChecksum(ctx, path, dep.SHA256); err != nil {
					return err
				}
			}
			if dep.Signature.Enabled() && o.signatures != nil {
				if err := o.signatures.VerifyDependency(ctx, path, dep.Signature); err != nil {
					return err
				}
			}
			return nil
		}

		result, err := o.fetcher.FetchDependency(ctx, dep, o.root, verify)
		if result != nil {
			if err != nil {
				result.Message = err.Error()
			}
			results = append(results, result)
		}
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

// BuildArchive resolves the declared file set and builds the versioned zip
// plus its checksum sidecars
func (o *PackageOrchestrator) BuildArchive(ctx context.Context, m *entities.Manifest) (*entities.Artifact, *services.ChecksumArtifacts, error) {
	members, err := o.fileset.Resolve(o.root, m.Include)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve file set: %w", err)
	}

	outPath := o.archivePath(m)

	artifact, err := o.archiver.BuildArchive(ctx, o.root, members, outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build archive: %w", err)
	}
	artifact.Name = m.Name
	artifact.Version = m.Version

	sidecars, err := o.artifacts.GenerateAll(artifact.Path)
	if err != nil {
		return artifact, nil, fmt.Errorf("failed to write checksum sidecars: %w", err)
	}

	return artifact, sidecars, nil
}

// PackageAll is the default workflow: fetch dependencies, then build the
// archive. Steps are sequential; the first failure aborts the run.
func (o *PackageOrchestrator) PackageAll(ctx context.Context, m *entities.Manifest) (*RunReport, error) {
	startTime := time.Now()
	report := &RunReport{RunID: uuid.New().String()}

	fetches, err := o.FetchDependencies(ctx, m)
	report.Fetches = fetches
	if err != nil {
		report.Error = err
		report.Duration = time.Since(startTime)
		return report, err
	}

	artifact, sidecars, err := o.BuildArchive(ctx, m)
	report.Artifact = artifact
	report.Sidecars = sidecars
	if err != nil {
		report.Error = err
		report.Duration = time.Since(startTime)
		return report, err
	}

	report.Success = true
	report.Duration = time.Since(startTime)

	o.logger.Info("packaging run complete",
		interfaces.F("run_id", report.RunID),
		interfaces.F("archive", artifact.Path),
		interfaces.F("duration", report.Duration))

	return report, nil
}

// ResolveMembers exposes file set resolution for validation workflows
func (o *PackageOrchestrator) ResolveMembers(m *entities.Manifest) ([]string, error) {
	return o.fileset.Resolve(o.root, m.Include)
}

func (o *PackageOrchestrator) archivePath(m *entities.Manifest) string {
	// ArchivePath is relative to the plugin root
	return filepath.Join(o.root, m.ArchivePath())
}
