package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugpack/plugpack/internal/external-adapters/github"
)

// UpdateInfo represents the upstream status of one vendored dependency
type UpdateInfo struct {
	Dependency   string `json:"dependency"`
	Dest         string `json:"dest"`
	LocalModTime string `json:"local_mod_time,omitempty"`
	UpstreamTime string `json:"upstream_time,omitempty"`
	UpdateNeeded bool   `json:"update_needed"`
	Error        string `json:"error,omitempty"`
}

func runMonitor(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	var (
		dir        = fs.String("dir", ".", "Plugin source directory")
		jsonOutput = fs.Bool("json", false, "Output results as JSON")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: plugpack monitor [options]

Check each vendored dependency's upstream repository for commits newer
than the local copy, and whether the plugin's release tag already
exists. Dependencies without an upstream repo in the manifest are
skipped.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, _ := bootstrap()
	m := loadManifest(ctx, cfg, *dir)

	client := github.New(ctx, cfg.GitHubToken)

	var updates []UpdateInfo
	for _, dep := range m.Dependencies {
		if dep.Upstream.Owner == "" || dep.Upstream.Name == "" {
			continue
		}

		info := UpdateInfo{Dependency: dep.Name, Dest: dep.Dest}

		localInfo, err := os.Stat(filepath.Join(*dir, filepath.FromSlash(dep.Dest)))
		switch {
		case err == nil:
			info.LocalModTime = localInfo.ModTime().UTC().Format("2006-01-02T15:04:05Z")
		case os.IsNotExist(err):
			// Never fetched; any upstream state counts as an update
			info.UpdateNeeded = true
		default:
			info.Error = err.Error()
			updates = append(updates, info)
			continue
		}

		// The upstream path is the filename the raw URL points at
		upstreamPath := upstreamFilePath(dep.URL)
		upstreamTime, err := client.LatestCommitTime(ctx, dep.Upstream.Owner, dep.Upstream.Name, upstreamPath)
		if err != nil {
			info.Error = err.Error()
			updates = append(updates, info)
			continue
		}
		info.UpstreamTime = upstreamTime.UTC().Format("2006-01-02T15:04:05Z")

		if localInfo != nil && upstreamTime.After(localInfo.ModTime()) {
			info.UpdateNeeded = true
		}

		updates = append(updates, info)
	}

	tagged := false
	if m.Repo.Owner != "" && m.Repo.Name != "" {
		exists, err := client.ReleaseExists(ctx, m.Repo.Owner, m.Repo.Name, m.Tag())
		if err == nil {
			tagged = exists
		}
	}

	if *jsonOutput {
		out := map[string]interface{}{
			"version":          m.Version,
			"release_exists":   tagged,
			"dependencies":     updates,
			"update_available": anyUpdate(updates),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("📦 %s v%s (release tag exists: %v)\n\n", m.Name, m.Version, tagged)
	if len(updates) == 0 {
		fmt.Println("No dependencies with an upstream repo to check")
		return
	}

	for _, u := range updates {
		switch {
		case u.Error != "":
			fmt.Printf("⚠️  %s: %s\n", u.Dependency, u.Error)
		case u.UpdateNeeded:
			fmt.Printf("⬆️  %s: upstream changed %s (local %s)\n", u.Dependency, u.UpstreamTime, u.LocalModTime)
		default:
			fmt.Printf("✅ %s is current\n", u.Dependency)
		}
	}
}

func anyUpdate(updates []UpdateInfo) bool {
	for _, u := range updates {
		if u.UpdateNeeded {
			return true
		}
	}
	return false
}

// upstreamFilePath extracts the in-repo file path from a raw download URL
// (raw.githubusercontent.com/<owner>/<repo>/<ref>/<path...>)
func upstreamFilePath(rawURL string) string {
	const marker = "raw.githubusercontent.com/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return ""
	}

	parts := strings.SplitN(rawURL[idx+len(marker):], "/", 4)
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}
