package install

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bap/internal/registry"
)

// Fetcher materializes one release into dest and returns the directory that
// holds the unpacked files.
type Fetcher interface {
	FetchAndUnpack(ctx context.Context, version string, platform Platform, dest string) (string, error)
}

// ReleaseFetcher downloads agent tarballs over HTTP.
type ReleaseFetcher struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

// NewReleaseFetcher returns a fetcher rooted at baseURL, e.g.
// https://github.com/buildkite/agent/releases/download.
func NewReleaseFetcher(baseURL string, timeout time.Duration) *ReleaseFetcher {
	return &ReleaseFetcher{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// ArtifactName returns the tarball name for a version and platform.
func ArtifactName(version string, platform Platform) string {
	return fmt.Sprintf("buildkite-agent-%s-%s-%s.tar.gz", platform.OS, platform.Arch, version)
}

// ArtifactURL returns the download location for a version and platform.
func (f *ReleaseFetcher) ArtifactURL(version string, platform Platform) string {
	return fmt.Sprintf("%s/v%s/%s", f.BaseURL, version, ArtifactName(version, platform))
}

// FetchAndUnpack downloads the release tarball into dest, extracts it there
// and removes the tarball.
func (f *ReleaseFetcher) FetchAndUnpack(ctx context.Context, version string, platform Platform, dest string) (string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", &registry.IoError{Op: "create directory", Path: dest, Err: err}
	}

	archivePath := filepath.Join(dest, ArtifactName(version, platform))
	if err := f.download(ctx, f.ArtifactURL(version, platform), archivePath); err != nil {
		return "", err
	}
	if err := extractTarGz(archivePath, dest); err != nil {
		return "", err
	}
	if err := os.Remove(archivePath); err != nil {
		return "", &registry.IoError{Op: "remove", Path: archivePath, Err: err}
	}
	return dest, nil
}

func (f *ReleaseFetcher) download(ctx context.Context, downloadURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &registry.DownloadError{URL: downloadURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &registry.DownloadError{URL: downloadURL, Status: resp.Status}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return &registry.IoError{Op: "create temp file", Path: dest, Err: err}
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return &registry.DownloadError{URL: downloadURL, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &registry.IoError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return &registry.IoError{Op: "finalize download", Path: dest, Err: err}
	}
	return nil
}

func extractTarGz(archivePath, dest string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return &registry.IoError{Op: "open", Path: archivePath, Err: err}
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return &registry.ArchiveError{Path: archivePath, Err: err}
	}
	defer gz.Close()

	if err := untarStream(gz, dest); err != nil {
		var ioErr *registry.IoError
		if errors.As(err, &ioErr) {
			return err
		}
		return &registry.ArchiveError{Path: archivePath, Err: err}
	}
	return nil
}

func untarStream(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &registry.IoError{Op: "create directory", Path: target, Err: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &registry.IoError{Op: "create directory", Path: filepath.Dir(target), Err: err}
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return &registry.IoError{Op: "create", Path: target, Err: err}
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return &registry.IoError{Op: "close", Path: target, Err: err}
			}
		default:
			// Links and devices are not part of agent releases.
		}
	}
	return nil
}

// safeJoin joins name under dest and rejects entries that would escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}
