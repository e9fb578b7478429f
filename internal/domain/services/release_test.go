package services

import (
	"reflect"
	"strings"
	"testing"

	"github.com/plugpack/plugpack/internal/domain/entities"
)

func testManifest() *entities.Manifest {
	return &entities.Manifest{
		Name:       "KOReader Sync",
		Version:    "0.2.3-alpha",
		ReleaseDir: "releases",
	}
}

func TestValidateArchive(t *testing.T) {
	members := []string{"about.txt", "LICENSE", "__init__.py", "slpp.py"}

	tests := []struct {
		name           string
		archivePath    string
		actualMembers  []string
		expectedStatus ValidationStatus
		expectedReady  bool
	}{
		{
			name:           "exact member match - ready",
			archivePath:    "releases/KOReader Sync v0.2.3-alpha.zip",
			actualMembers:  members,
			expectedStatus: StatusReady,
			expectedReady:  true,
		},
		{
			name:           "missing archive",
			archivePath:    "",
			actualMembers:  nil,
			expectedStatus: StatusMissingArchive,
		},
		{
			name:           "stale archive name",
			archivePath:    "releases/KOReader Sync v0.2.2.zip",
			actualMembers:  members,
			expectedStatus: StatusNameMismatch,
		},
		{
			name:           "archive missing a member",
			archivePath:    "releases/KOReader Sync v0.2.3-alpha.zip",
			actualMembers:  []string{"about.txt", "LICENSE", "__init__.py"},
			expectedStatus: StatusMemberMismatch,
		},
		{
			name:           "archive has an extra member",
			archivePath:    "releases/KOReader Sync v0.2.3-alpha.zip",
			actualMembers:  append([]string{"stray.pyc"}, members...),
			expectedStatus: StatusMemberMismatch,
		},
	}

	service := NewReleaseService()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validation := service.ValidateArchive(testManifest(), tt.archivePath, tt.actualMembers, members)

			if validation.Status != tt.expectedStatus {
				t.Errorf("Status = %v, want %v", validation.Status, tt.expectedStatus)
			}
			if validation.IsReady() != tt.expectedReady {
				t.Errorf("IsReady() = %v, want %v", validation.IsReady(), tt.expectedReady)
			}
			if tt.expectedReady && validation.ErrorMessage() != "" {
				t.Errorf("ErrorMessage() = %q, want empty for ready archive", validation.ErrorMessage())
			}
			if !tt.expectedReady && validation.ErrorMessage() == "" {
				t.Error("ErrorMessage() should not be empty for a non-ready archive")
			}
		})
	}
}

func TestValidateArchive_MemberDiff(t *testing.T) {
	expected := []string{"about.txt", "LICENSE", "slpp.py"}
	actual := []string{"about.txt", "config.pyc"}

	validation := NewReleaseService().ValidateArchive(
		testManifest(), "releases/KOReader Sync v0.2.3-alpha.zip", actual, expected)

	if !reflect.DeepEqual(validation.MissingMembers, []string{"LICENSE", "slpp.py"}) {
		t.Errorf("MissingMembers = %v, want [LICENSE slpp.py]", validation.MissingMembers)
	}
	if !reflect.DeepEqual(validation.ExtraMembers, []string{"config.pyc"}) {
		t.Errorf("ExtraMembers = %v, want [config.pyc]", validation.ExtraMembers)
	}

	msg := validation.ErrorMessage()
	if !strings.Contains(msg, "LICENSE") || !strings.Contains(msg, "config.pyc") {
		t.Errorf("ErrorMessage() = %q, should name the mismatched members", msg)
	}
}

func TestIsPrerelease(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"0.2.3-alpha", true},
		{"1.0.0-beta", true},
		{"2.1.0-rc1", true},
		{"1.2.3.alpha", true},
		{"1.0.0-ALPHA", true},
		{"1.0.0", false},
		{"0.2.3", false},
		{"10.20.30", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := IsPrerelease(tt.version); got != tt.want {
				t.Errorf("IsPrerelease(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestManifestArchiveNaming(t *testing.T) {
	m := testManifest()

	if got := m.ArchiveName(); got != "KOReader Sync v0.2.3-alpha.zip" {
		t.Errorf("ArchiveName() = %q", got)
	}
	if got := m.Tag(); got != "v0.2.3-alpha" {
		t.Errorf("Tag() = %q", got)
	}
	if !strings.HasPrefix(m.ArchivePath(), "releases") {
		t.Errorf("ArchivePath() = %q, want under releases/", m.ArchivePath())
	}
}
