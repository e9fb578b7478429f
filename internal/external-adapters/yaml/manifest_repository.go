package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugpack/plugpack/internal/domain/entities"
)

// Manifest filenames probed in a plugin directory, in order
var manifestFilenames = []string{"plugpack.yml", "plugpack.yaml"}

// ManifestRepository implements repositories.ManifestRepository using a
// YAML manifest file in the plugin directory
type ManifestRepository struct {
	parser *ManifestParser
}

// NewManifestRepository creates a new YAML-based manifest repository
func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{parser: NewManifestParser()}
}

// GetManifest loads the packaging manifest for a plugin directory
func (r *ManifestRepository) GetManifest(_ context.Context, dir string) (*entities.Manifest, error) {
	for _, name := range manifestFilenames {
		filePath := filepath.Join(dir, name)
		if _, err := os.Stat(filePath); err == nil {
			return r.parser.ParseFile(filePath)
		}
	}

	return nil, fmt.Errorf("no manifest found in %s (expected %s)", dir, manifestFilenames[0])
}
