// Package gateways contains adapters that touch the filesystem, the
// network, and the host applications.
package gateways

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/plugpack/plugpack/internal/domain/entities"
	"github.com/plugpack/plugpack/internal/domain/interfaces"
)

const (
	// Max retries for transient errors
	maxRetries = 3
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second

	fetchUserAgent = "plugpack/1.0"
)

// Fetcher downloads vendored dependency files, overwriting the local copy
// only when the upstream content is newer. This reproduces wget -N
// semantics: the request carries If-Modified-Since from the local mtime,
// a 304 leaves the file untouched, and a fresh download is stamped with
// the server's Last-Modified time.
type Fetcher struct {
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewFetcher creates a new dependency fetcher
func NewFetcher(timeout time.Duration, logger interfaces.Logger) *Fetcher {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchDependency performs the conditional download of a single dependency
// into root. The verify callback (may be nil) runs against the temporary
// download before it replaces the existing file, so a failed verification
// never clobbers a good local copy.
func (f *Fetcher) FetchDependency(ctx context.Context, dep entities.Dependency, root string, verify func(ctx context.Context, path string) error) (*entities.FetchResult, error) {
	dest := filepath.Join(root, filepath.FromSlash(dep.Dest))
	result := &entities.FetchResult{Dependency: dep.Name, Dest: dep.Dest}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dep.URL, nil)
	if err != nil {
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("failed to create request for %s: %w", dep.Name, err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	// Only re-download when the remote copy is newer than the local one
	if info, err := os.Stat(dest); err == nil {
		req.Header.Set("If-Modified-Since", info.ModTime().UTC().Format(http.TimeFormat))
	}

	resp, err := f.doWithRetry(req)
	if err != nil {
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("fetch of %s failed: %w", dep.Name, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		result.Status = entities.FetchUpToDate
		f.logger.Debug("dependency up to date",
			interfaces.F("dependency", dep.Name),
			interfaces.F("dest", dep.Dest))
		return result, nil
	}

	if resp.StatusCode != http.StatusOK {
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("fetch of %s failed: HTTP %d: %s", dep.Name, resp.StatusCode, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("failed to create directory for %s: %w", dep.Dest, err)
	}

	// Download to a temporary sibling, verify, then rename into place
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := tmp.ReadFrom(resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("failed to write %s: %w", dep.Dest, err)
	}

	if verify != nil {
		if err := verify(ctx, tmpPath); err != nil {
			_ = os.Remove(tmpPath)
			result.Status = entities.FetchFailed
			return result, fmt.Errorf("verification of %s failed: %w", dep.Name, err)
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		result.Status = entities.FetchFailed
		return result, fmt.Errorf("failed to move %s into place: %w", dep.Dest, err)
	}

	result.Status = entities.FetchDownloaded
	result.Bytes = written

	// Stamp the local mtime from Last-Modified so the next run's
	// If-Modified-Since matches the server's timestamp
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		if err := os.Chtimes(dest, time.Now(), lm); err == nil {
			result.ModTime = lm
		}
	}

	f.logger.Info("dependency downloaded",
		interfaces.F("dependency", dep.Name),
		interfaces.F("dest", dep.Dest),
		interfaces.F("bytes", written))

	return result, nil
}

// isRetryableError checks if an HTTP status code is retryable
func isRetryableError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// calculateBackoff returns the backoff duration for a retry attempt
func calculateBackoff(attempt int) time.Duration {
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}

// doWithRetry executes an HTTP request with exponential backoff retry
func (f *Fetcher) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(calculateBackoff(attempt - 1)):
			}
		}

		resp, err = f.httpClient.Do(req)
		if err != nil {
			// Network errors are retryable
			if attempt < maxRetries {
				continue
			}
			return nil, err
		}

		if !isRetryableError(resp.StatusCode) {
			return resp, nil
		}

		// Retryable error - close body and retry
		//nolint:errcheck,gosec // G104: Best effort close before retry
		resp.Body.Close()

		if attempt < maxRetries {
			continue
		}

		return resp, nil
	}

	return resp, err
}
