package entities

import "time"

// Artifact represents a produced file: the plugin zip or a fetched
// dependency.
type Artifact struct {
	Name    string
	Version string
	Path    string
	Type    string // "archive", "dependency"
	Members []string
	Size    int64
}

// FetchStatus describes the outcome of a conditional dependency fetch.
type FetchStatus string

// Fetch outcomes.
const (
	FetchDownloaded FetchStatus = "downloaded"
	FetchUpToDate   FetchStatus = "up-to-date"
	FetchFailed     FetchStatus = "failed"
)

// FetchResult is the per-dependency outcome of the deps workflow.
type FetchResult struct {
	Dependency string
	Dest       string
	Status     FetchStatus
	Bytes      int64
	ModTime    time.Time
	Message    string
}
