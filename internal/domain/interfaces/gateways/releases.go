// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
	"time"
)

// PublishedRelease describes a release created on the hosting service
type PublishedRelease struct {
	ID      int64
	TagName string
	HTMLURL string
	Assets  []string
}

// ReleasePublisher defines operations against the plugin's release host
type ReleasePublisher interface {
	// ReleaseExists reports whether a release with the tag already exists
	ReleaseExists(ctx context.Context, owner, repo, tag string) (bool, error)

	// PublishRelease creates a release for the tag and uploads the assets
	PublishRelease(ctx context.Context, owner, repo string, opts PublishOptions) (*PublishedRelease, error)

	// LatestCommitTime returns the commit time of the newest commit
	// touching path (empty path means any commit)
	LatestCommitTime(ctx context.Context, owner, repo, path string) (time.Time, error)
}

// PublishOptions configures a release publication
type PublishOptions struct {
	Tag        string
	Name       string
	Notes      string
	Draft      bool
	Prerelease bool
	Assets     []string
}
