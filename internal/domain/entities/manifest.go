// Package entities defines core domain models and data structures.
package entities

import (
	"fmt"
	"path/filepath"
)

// Manifest describes a Calibre plugin source tree and how to package it.
// It is the replacement for the Makefile that used to drive the plugin
// release process.
type Manifest struct {
	Name         string
	Version      string
	ImportName   string
	Description  string
	Repo         RepoConfig
	ReleaseDir   string
	Include      []string
	Dependencies []Dependency
	Dev          DevConfig
}

// RepoConfig identifies the GitHub repository releases are published to.
type RepoConfig struct {
	Owner string
	Name  string
}

// Dependency is a vendored third-party file fetched from a fixed upstream
// URL, e.g. the slpp.py Lua-table serializer the plugin ships with.
type Dependency struct {
	Name      string
	URL       string
	Dest      string
	SHA256    string
	Signature SignatureConfig
	Upstream  RepoConfig
}

// SignatureConfig configures optional detached-GPG verification of a
// fetched dependency.
type SignatureConfig struct {
	SigURL  string
	KeyFile string
	KeyIDs  []string
}

// Enabled reports whether signature verification is configured.
func (s SignatureConfig) Enabled() bool {
	return s.SigURL != ""
}

// DevConfig configures the host-application commands used by the dev
// workflow (plugin reinstall plus debug-GUI relaunch).
type DevConfig struct {
	CustomizeBin   string
	DebugBin       string
	ExtraArgs      []string
	TimeoutMinutes int
}

// ArchiveName returns the versioned archive filename, e.g.
// "KOReader Sync v0.2.3-alpha.zip".
func (m *Manifest) ArchiveName() string {
	return fmt.Sprintf("%s v%s.zip", m.Name, m.Version)
}

// ArchivePath returns the archive path relative to the plugin root.
func (m *Manifest) ArchivePath() string {
	return filepath.Join(m.ReleaseDir, m.ArchiveName())
}

// Tag returns the release tag for the manifest version.
func (m *Manifest) Tag() string {
	return "v" + m.Version
}
