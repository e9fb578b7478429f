// Package github talks to the GitHub API for release publishing and
// upstream monitoring. This is in external-adapters to isolate the
// go-github dependency
package github

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/v52/github"
	"golang.org/x/oauth2"

	"github.com/plugpack/plugpack/internal/domain/interfaces/gateways"
)

// Client implements gateways.ReleasePublisher using go-github
type Client struct {
	gh *github.Client
}

var _ gateways.ReleasePublisher = (*Client)(nil)

// New creates a client; an empty token yields unauthenticated access,
// which is enough for monitoring public upstreams
func New(ctx context.Context, token string) *Client {
	if token == "" {
		return &Client{gh: github.NewClient(nil)}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// ReleaseExists reports whether a release with the tag already exists
func (c *Client) ReleaseExists(ctx context.Context, owner, repo, tag string) (bool, error) {
	_, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up release %s: %w", tag, err)
	}
	return true, nil
}

// PublishRelease creates a release for the tag and uploads the assets
func (c *Client) PublishRelease(ctx context.Context, owner, repo string, opts gateways.PublishOptions) (*gateways.PublishedRelease, error) {
	release, _, err := c.gh.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName:    github.String(opts.Tag),
		Name:       github.String(opts.Name),
		Body:       github.String(opts.Notes),
		Draft:      github.Bool(opts.Draft),
		Prerelease: github.Bool(opts.Prerelease),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s: %w", opts.Tag, err)
	}

	published := &gateways.PublishedRelease{
		ID:      release.GetID(),
		TagName: release.GetTagName(),
		HTMLURL: release.GetHTMLURL(),
	}

	for _, assetPath := range opts.Assets {
		name, err := c.uploadAsset(ctx, owner, repo, release.GetID(), assetPath)
		if err != nil {
			return published, err
		}
		published.Assets = append(published.Assets, name)
	}

	return published, nil
}

func (c *Client) uploadAsset(ctx context.Context, owner, repo string, releaseID int64, assetPath string) (string, error) {
	//nolint:gosec // G304: assetPath is a build output selected for upload
	f, err := os.Open(assetPath)
	if err != nil {
		return "", fmt.Errorf("failed to open asset %s: %w", assetPath, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	name := filepath.Base(assetPath)
	_, _, err = c.gh.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, &github.UploadOptions{Name: name}, f)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset %s: %w", name, err)
	}

	return name, nil
}

// LatestCommitTime returns the commit time of the newest commit touching
// path in the upstream repository (empty path means any commit)
func (c *Client) LatestCommitTime(ctx context.Context, owner, repo, path string) (time.Time, error) {
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		Path:        path,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to list commits for %s/%s: %w", owner, repo, err)
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("no commits found for %s/%s path %q", owner, repo, path)
	}

	commit := commits[0].GetCommit()
	if committer := commit.GetCommitter(); committer != nil {
		return committer.GetDate().Time, nil
	}

	return time.Time{}, fmt.Errorf("commit for %s/%s has no committer date", owner, repo)
}
