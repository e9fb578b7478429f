package services

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumArtifactsService writes and reads the checksum sidecar files that
// accompany a release archive (<archive>.sha256 / <archive>.sha512, in the
// "hash  filename" format sha256sum understands).
type ChecksumArtifactsService struct{}

// NewChecksumArtifactsService creates a new checksum artifacts service
func NewChecksumArtifactsService() *ChecksumArtifactsService {
	return &ChecksumArtifactsService{}
}

// ChecksumArtifacts holds the sidecar paths written for an archive
type ChecksumArtifacts struct {
	SHA256Path string
	SHA512Path string
}

// GenerateAll writes both checksum sidecars next to the archive
func (s *ChecksumArtifactsService) GenerateAll(archivePath string) (*ChecksumArtifacts, error) {
	sha256Path, err := s.generate(archivePath, ".sha256", sha256.New())
	if err != nil {
		return nil, fmt.Errorf("failed to generate SHA256 sidecar: %w", err)
	}

	sha512Path, err := s.generate(archivePath, ".sha512", sha512.New())
	if err != nil {
		return nil, fmt.Errorf("failed to generate SHA512 sidecar: %w", err)
	}

	return &ChecksumArtifacts{SHA256Path: sha256Path, SHA512Path: sha512Path}, nil
}

func (s *ChecksumArtifactsService) generate(filePath, ext string, h hash.Hash) (string, error) {
	sum, err := computeSum(filePath, h)
	if err != nil {
		return "", err
	}

	sidecarPath := filePath + ext
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(filePath))

	if err := os.WriteFile(sidecarPath, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}

	return sidecarPath, nil
}

// ParseChecksumFile reads a sidecar and returns the expected hex digest.
// Only the first field matters; the filename column is informational.
func (s *ChecksumArtifactsService) ParseChecksumFile(sidecarPath string) (string, error) {
	//nolint:gosec // G304: sidecarPath is user-provided for verification
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return "", fmt.Errorf("failed to read checksum file: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("checksum file %s is empty", sidecarPath)
	}

	sum := strings.ToLower(fields[0])
	if _, err := hex.DecodeString(sum); err != nil {
		return "", fmt.Errorf("checksum file %s does not start with a hex digest", sidecarPath)
	}

	return sum, nil
}

func computeSum(filePath string, h hash.Hash) (string, error) {
	//nolint:gosec // G304: filePath is the archive being fingerprinted
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
