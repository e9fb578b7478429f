package test_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// buildCLI builds the plugpack CLI binary once per test run
func buildCLI(t *testing.T) string {
	t.Helper()

	buildDir := filepath.Join("..", "test-dist", "cli-bin")
	if err := os.MkdirAll(buildDir, 0750); err != nil {
		t.Fatalf("Failed to create build dir: %v", err)
	}

	cliPath, err := filepath.Abs(filepath.Join(buildDir, "plugpack"))
	if err != nil {
		t.Fatalf("Failed to resolve CLI path: %v", err)
	}

	if _, err := os.Stat(cliPath); err == nil {
		return cliPath
	}

	t.Log("Building plugpack CLI...")
	cmd := exec.Command("go", "build", "-o", cliPath, "../cmd/plugpack") // #nosec G204 -- test code with controlled input
	cmd.Dir = filepath.Join("..", "test")

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\nOutput: %s", err, output)
	}

	return cliPath
}

// writePluginFixture lays out a plugin source tree with a manifest and no
// remote dependencies, so packaging works offline
func writePluginFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifest := `name: KOReader Sync
version: 0.2.3-alpha
import_name: koreader
include:
  - about.txt
  - LICENSE
  - plugin-import-name-koreader.txt
  - "*.py"
  - "*.md"
  - "images/*.png"
`

	files := map[string]string{
		"plugpack.yml":                    manifest,
		"about.txt":                       "KOReader Sync plugin",
		"LICENSE":                         "GPLv3",
		"plugin-import-name-koreader.txt": "",
		"__init__.py":                     "plugin entry point",
		"config.py":                       "plugin config",
		"slpp.py":                         "vendored serializer",
		"README.md":                       "readme",
		"images/icon.png":                 "png bytes",
	}

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	return dir
}

func runCLI(t *testing.T, cliPath string, args ...string) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, args...) // #nosec G204 -- test code with controlled input
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestCLI_Help tests help output for all commands
func TestCLI_Help(t *testing.T) {
	cliPath := buildCLI(t)

	commands := []string{
		"",
		"all",
		"zip",
		"deps",
		"dev",
		"verify",
		"release",
		"monitor",
		"init",
	}

	for _, cmd := range commands {
		t.Run("help_"+cmd, func(t *testing.T) {
			args := []string{"--help"}
			if cmd != "" {
				args = []string{cmd, "--help"}
			}

			output, err := runCLI(t, cliPath, args...)

			// Help exits with 0 or 2 (flag usage)
			if err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) && exitErr.ExitCode() != 2 {
					t.Errorf("Help exited with unexpected code: %d", exitErr.ExitCode())
				}
			}

			if !strings.Contains(output, "Usage") && !strings.Contains(output, "Commands") {
				t.Errorf("Expected usage information in help output:\n%s", output)
			}
		})
	}
}

// TestCLI_UnknownCommand tests the error path for a bad subcommand
func TestCLI_UnknownCommand(t *testing.T) {
	cliPath := buildCLI(t)

	output, err := runCLI(t, cliPath, "frobnicate")
	if err == nil {
		t.Error("Expected non-zero exit for unknown command")
	}
	if !strings.Contains(output, "Unknown command") {
		t.Errorf("Expected 'Unknown command' in output:\n%s", output)
	}
}

// TestCLI_ZipAndVerify packages a fixture plugin and verifies the result
func TestCLI_ZipAndVerify(t *testing.T) {
	cliPath := buildCLI(t)
	dir := writePluginFixture(t)

	output, err := runCLI(t, cliPath, "zip", "-dir", dir)
	if err != nil {
		t.Fatalf("zip failed: %v\nOutput: %s", err, output)
	}

	archivePath := filepath.Join(dir, "releases", "KOReader Sync v0.2.3-alpha.zip")
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("Archive not created: %v", err)
	}
	for _, ext := range []string{".sha256", ".sha512"} {
		if _, err := os.Stat(archivePath + ext); err != nil {
			t.Errorf("Sidecar %s not created: %v", ext, err)
		}
	}

	output, err = runCLI(t, cliPath, "verify", "-dir", dir)
	if err != nil {
		t.Fatalf("verify failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Archive verified") {
		t.Errorf("Expected verification success in output:\n%s", output)
	}

	// Rebuilding must succeed and replace the archive in place
	if output, err = runCLI(t, cliPath, "zip", "-dir", dir); err != nil {
		t.Fatalf("Second zip failed: %v\nOutput: %s", err, output)
	}
}

// TestCLI_Verify_DetectsStaleArchive verifies that a tree change after
// packaging fails verification
func TestCLI_Verify_DetectsStaleArchive(t *testing.T) {
	cliPath := buildCLI(t)
	dir := writePluginFixture(t)

	if output, err := runCLI(t, cliPath, "zip", "-dir", dir); err != nil {
		t.Fatalf("zip failed: %v\nOutput: %s", err, output)
	}

	// A new source file makes the archive member list stale
	if err := os.WriteFile(filepath.Join(dir, "new_module.py"), []byte("new"), 0600); err != nil {
		t.Fatal(err)
	}

	output, err := runCLI(t, cliPath, "verify", "-dir", dir)
	if err == nil {
		t.Fatalf("verify should fail after the tree changed:\n%s", output)
	}
	if !strings.Contains(output, "new_module.py") {
		t.Errorf("Expected the missing member to be named in output:\n%s", output)
	}
}

// TestCLI_Deps runs the deps command with no dependencies declared
func TestCLI_Deps_NoDependencies(t *testing.T) {
	cliPath := buildCLI(t)
	dir := writePluginFixture(t)

	output, err := runCLI(t, cliPath, "deps", "-dir", dir)
	if err != nil {
		t.Fatalf("deps failed: %v\nOutput: %s", err, output)
	}
}

// TestCLI_Init writes a starter manifest and refuses to overwrite it
func TestCLI_Init(t *testing.T) {
	cliPath := buildCLI(t)
	dir := t.TempDir()

	output, err := runCLI(t, cliPath, "init", "-dir", dir)
	if err != nil {
		t.Fatalf("init failed: %v\nOutput: %s", err, output)
	}

	manifestPath := filepath.Join(dir, "plugpack.yml")
	if _, err := os.Stat(manifestPath); err != nil {
		t.Fatalf("Manifest not created: %v", err)
	}

	// Second init without --force must refuse
	output, err = runCLI(t, cliPath, "init", "-dir", dir)
	if err == nil {
		t.Fatalf("init should refuse to overwrite:\n%s", output)
	}

	if output, err = runCLI(t, cliPath, "init", "-dir", dir, "-force"); err != nil {
		t.Fatalf("init -force failed: %v\nOutput: %s", err, output)
	}
}

// TestCLI_Release_DryRun exercises the release validation path without a token
func TestCLI_Release_DryRun(t *testing.T) {
	cliPath := buildCLI(t)
	dir := writePluginFixture(t)

	// A repo section is required for releases
	manifestPath := filepath.Join(dir, "plugpack.yml")
	data, err := os.ReadFile(manifestPath) // #nosec G304 -- test temp dir
	if err != nil {
		t.Fatal(err)
	}
	withRepo := string(data) + "\nrepo:\n  owner: example\n  name: plugin\n"
	if err := os.WriteFile(manifestPath, []byte(withRepo), 0600); err != nil {
		t.Fatal(err)
	}

	// Without an archive the release must refuse
	output, err := runCLI(t, cliPath, "release", "-dir", dir, "-dry-run")
	if err == nil {
		t.Fatalf("release should fail without an archive:\n%s", output)
	}

	if output, err = runCLI(t, cliPath, "zip", "-dir", dir); err != nil {
		t.Fatalf("zip failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, cliPath, "release", "-dir", dir, "-dry-run")
	if err != nil {
		t.Fatalf("release dry-run failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Would create release v0.2.3-alpha") {
		t.Errorf("Expected dry-run summary in output:\n%s", output)
	}
}

// TestCLI_Monitor_JSONWithoutUpstreams checks the monitor JSON shape when no
// dependency declares an upstream repo
func TestCLI_Monitor_JSONWithoutUpstreams(t *testing.T) {
	cliPath := buildCLI(t)
	dir := writePluginFixture(t)

	output, err := runCLI(t, cliPath, "monitor", "-dir", dir, "-json")
	if err != nil {
		t.Fatalf("monitor failed: %v\nOutput: %s", err, output)
	}

	var report map[string]interface{}
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("Expected valid JSON output: %v\nOutput: %s", err, output)
	}
	if report["version"] != "0.2.3-alpha" {
		t.Errorf("JSON version = %v, want 0.2.3-alpha", report["version"])
	}
	if report["update_available"] != false {
		t.Errorf("JSON update_available = %v, want false", report["update_available"])
	}
}
