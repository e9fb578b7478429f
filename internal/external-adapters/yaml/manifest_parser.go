// Package yaml provides YAML-based manifest parsing and repository
// implementations.
package yaml

import (
	"fmt"
	"os"
	"path"

	"github.com/plugpack/plugpack/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlManifest represents the raw YAML structure
type yamlManifest struct {
	Name         string           `yaml:"name"`
	Version      string           `yaml:"version"`
	ImportName   string           `yaml:"import_name"`
	Description  string           `yaml:"description"`
	Repo         yamlRepo         `yaml:"repo"`
	ReleaseDir   string           `yaml:"release_dir"`
	Include      []string         `yaml:"include"`
	Dependencies []yamlDependency `yaml:"dependencies"`
	Dev          yamlDev          `yaml:"dev"`
}

type yamlRepo struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

type yamlDependency struct {
	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`
	Dest      string        `yaml:"dest"`
	SHA256    string        `yaml:"sha256"`
	Signature yamlSignature `yaml:"signature"`
	Upstream  yamlRepo      `yaml:"upstream"`
}

type yamlSignature struct {
	SigURL  string   `yaml:"sig_url"`
	KeyFile string   `yaml:"key_file"`
	KeyIDs  []string `yaml:"key_ids"`
}

type yamlDev struct {
	CustomizeBin   string   `yaml:"customize_bin"`
	DebugBin       string   `yaml:"debug_bin"`
	ExtraArgs      []string `yaml:"extra_args"`
	TimeoutMinutes int      `yaml:"timeout_minutes"`
}

// ManifestParser parses YAML manifest files
type ManifestParser struct{}

// NewManifestParser creates a new YAML parser
func NewManifestParser() *ManifestParser {
	return &ManifestParser{}
}

// ParseFile parses a YAML manifest file into a Manifest entity
func (p *ManifestParser) ParseFile(filePath string) (*entities.Manifest, error) {
	//nolint:gosec // G304: filePath is the manifest path from the repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Manifest entity
func (p *ManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	var ym yamlManifest
	if err := yaml.Unmarshal(data, &ym); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if ym.Name == "" {
		return nil, fmt.Errorf("manifest must have a name")
	}
	if ym.Version == "" {
		return nil, fmt.Errorf("manifest must have a version")
	}
	if len(ym.Include) == 0 {
		return nil, fmt.Errorf("manifest must declare at least one include pattern")
	}

	m := &entities.Manifest{
		Name:        ym.Name,
		Version:     ym.Version,
		ImportName:  ym.ImportName,
		Description: ym.Description,
		Repo:        entities.RepoConfig{Owner: ym.Repo.Owner, Name: ym.Repo.Name},
		ReleaseDir:  ym.ReleaseDir,
		Include:     ym.Include,
		Dev: entities.DevConfig{
			CustomizeBin:   ym.Dev.CustomizeBin,
			DebugBin:       ym.Dev.DebugBin,
			ExtraArgs:      ym.Dev.ExtraArgs,
			TimeoutMinutes: ym.Dev.TimeoutMinutes,
		},
	}

	if m.ReleaseDir == "" {
		m.ReleaseDir = "releases"
	}

	for _, yd := range ym.Dependencies {
		dep, err := convertDependency(yd)
		if err != nil {
			return nil, err
		}
		m.Dependencies = append(m.Dependencies, dep)
	}

	return m, nil
}

func convertDependency(yd yamlDependency) (entities.Dependency, error) {
	if yd.URL == "" {
		return entities.Dependency{}, fmt.Errorf("dependency %q must have a url", yd.Name)
	}

	dep := entities.Dependency{
		Name:   yd.Name,
		URL:    yd.URL,
		Dest:   yd.Dest,
		SHA256: yd.SHA256,
		Signature: entities.SignatureConfig{
			SigURL:  yd.Signature.SigURL,
			KeyFile: yd.Signature.KeyFile,
			KeyIDs:  yd.Signature.KeyIDs,
		},
		Upstream: entities.RepoConfig{Owner: yd.Upstream.Owner, Name: yd.Upstream.Name},
	}

	// Default the local path to the URL's filename
	if dep.Dest == "" {
		dep.Dest = path.Base(dep.URL)
	}
	if dep.Name == "" {
		dep.Name = dep.Dest
	}

	return dep, nil
}
