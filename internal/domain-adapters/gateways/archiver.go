package gateways

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/plugpack/plugpack/internal/domain/entities"
	"github.com/plugpack/plugpack/internal/domain/interfaces"
)

// Archiver builds the distributable plugin zip from a resolved member list
type Archiver struct {
	logger interfaces.Logger
}

// NewArchiver creates a new archiver
func NewArchiver(logger interfaces.Logger) *Archiver {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Archiver{logger: logger}
}

// ArchiveStatus describes an archive path before or after a build
type ArchiveStatus struct {
	Path    string
	Exists  bool
	Size    int64
	Members int
}

// String renders the status line printed before and after a build
func (s ArchiveStatus) String() string {
	if !s.Exists {
		return fmt.Sprintf("%s: not present", s.Path)
	}
	return fmt.Sprintf("%s: %d bytes, %d members", s.Path, s.Size, s.Members)
}

// BuildArchive writes members (paths relative to root, forward slashes)
// into a zip at outPath. The archive is written to a temporary sibling and
// renamed into place so a rebuild replaces the previous zip atomically.
func (a *Archiver) BuildArchive(_ context.Context, root string, members []string, outPath string) (*entities.Artifact, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("refusing to build an empty archive")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create release directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), filepath.Base(outPath)+".part-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	if err := a.writeZip(tmp, root, members); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	a.logger.Info("archive built",
		interfaces.F("path", outPath),
		interfaces.F("members", len(members)),
		interfaces.F("bytes", info.Size()))

	return &entities.Artifact{
		Path:    outPath,
		Type:    "archive",
		Members: members,
		Size:    info.Size(),
	}, nil
}

func (a *Archiver) writeZip(w io.Writer, root string, members []string) error {
	zw := zip.NewWriter(w)

	for _, member := range members {
		srcPath := filepath.Join(root, filepath.FromSlash(member))

		info, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("failed to stat member %s: %w", member, err)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create header for %s: %w", member, err)
		}
		header.Name = member
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", member, err)
		}

		//nolint:gosec // G304: member paths come from the resolved manifest file set
		src, err := os.Open(srcPath)
		if err != nil {
			return fmt.Errorf("failed to open member %s: %w", member, err)
		}

		_, err = io.Copy(entry, src)
		if closeErr := src.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("failed to write member %s: %w", member, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return nil
}

// ListArchive returns the member names of an existing zip in archive order
func (a *Archiver) ListArchive(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer r.Close()

	members := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		members = append(members, f.Name)
	}

	return members, nil
}

// Describe returns the current status of an archive path
func (a *Archiver) Describe(path string) ArchiveStatus {
	status := ArchiveStatus{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return status
	}
	status.Exists = true
	status.Size = info.Size()

	if members, err := a.ListArchive(path); err == nil {
		status.Members = len(members)
	}

	return status
}
