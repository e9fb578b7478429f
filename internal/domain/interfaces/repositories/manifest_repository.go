// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/plugpack/plugpack/internal/domain/entities"
)

// ManifestRepository defines the interface for loading plugin manifests
type ManifestRepository interface {
	// GetManifest loads the packaging manifest for a plugin directory
	GetManifest(ctx context.Context, dir string) (*entities.Manifest, error)
}
