package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/plugpack/plugpack/internal/domain/entities"
)

// ValidationStatus represents the readiness status of a built archive
type ValidationStatus string

// Archive validation statuses
const (
	StatusReady          ValidationStatus = "ready"
	StatusMissingArchive ValidationStatus = "missing_archive"
	StatusNameMismatch   ValidationStatus = "name_mismatch"
	StatusMemberMismatch ValidationStatus = "member_mismatch"
)

// ArchiveValidation contains the validation result for a built plugin archive
type ArchiveValidation struct {
	Status          ValidationStatus
	ExpectedPath    string
	ExpectedMembers []string
	ActualMembers   []string
	MissingMembers  []string
	ExtraMembers    []string
}

// IsReady returns true if the archive is ready for release
func (v *ArchiveValidation) IsReady() bool {
	return v.Status == StatusReady
}

// ErrorMessage returns a human-readable error message if not ready
func (v *ArchiveValidation) ErrorMessage() string {
	switch v.Status {
	case StatusReady:
		return ""
	case StatusMissingArchive:
		return fmt.Sprintf("archive not found at %s (run the zip command first)", v.ExpectedPath)
	case StatusNameMismatch:
		return fmt.Sprintf("archive name does not match manifest version (expected %s)", filepath.Base(v.ExpectedPath))
	case StatusMemberMismatch:
		msg := fmt.Sprintf("archive members do not match the declared file set (expected: %d, have: %d)",
			len(v.ExpectedMembers), len(v.ActualMembers))
		if len(v.MissingMembers) > 0 {
			msg += fmt.Sprintf("\n   Missing: %s", strings.Join(v.MissingMembers, ", "))
		}
		if len(v.ExtraMembers) > 0 {
			msg += fmt.Sprintf("\n   Unexpected: %s", strings.Join(v.ExtraMembers, ", "))
		}
		return msg
	default:
		return "unknown status"
	}
}

// ReleaseService handles archive validation logic
type ReleaseService struct{}

// NewReleaseService creates a new release service
func NewReleaseService() *ReleaseService {
	return &ReleaseService{}
}

// ValidateArchive validates a built archive against the manifest: the
// archive must sit at the versioned path and its member list must equal
// exactly the declared glob set resolved at validation time.
func (s *ReleaseService) ValidateArchive(m *entities.Manifest, archivePath string, actualMembers, expectedMembers []string) *ArchiveValidation {
	validation := &ArchiveValidation{
		ExpectedPath:    m.ArchivePath(),
		ExpectedMembers: expectedMembers,
		ActualMembers:   actualMembers,
	}

	if archivePath == "" {
		validation.Status = StatusMissingArchive
		return validation
	}

	if filepath.Base(archivePath) != m.ArchiveName() {
		validation.Status = StatusNameMismatch
		return validation
	}

	validation.MissingMembers = diffMembers(expectedMembers, actualMembers)
	validation.ExtraMembers = diffMembers(actualMembers, expectedMembers)

	if len(validation.MissingMembers) > 0 || len(validation.ExtraMembers) > 0 {
		validation.Status = StatusMemberMismatch
		return validation
	}

	validation.Status = StatusReady
	return validation
}

// IsPrerelease reports whether a version string denotes a pre-release
// (alpha/beta/rc suffix, as in "0.2.3-alpha")
func IsPrerelease(version string) bool {
	v := strings.ToLower(version)
	for _, marker := range []string{"-alpha", "-beta", "-rc", ".alpha", ".beta", ".rc"} {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

// diffMembers returns the members of a that are absent from b
func diffMembers(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, m := range b {
		set[m] = true
	}

	var diff []string
	for _, m := range a {
		if !set[m] {
			diff = append(diff, m)
		}
	}

	return diff
}
