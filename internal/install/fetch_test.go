package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bap/internal/registry"
)

type tarEntry struct {
	name string
	body string
	mode int64
	dir  bool
}

func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode, Size: int64(len(e.body))}
		if e.dir {
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		} else {
			hdr.Typeflag = tar.TypeReg
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if !e.dir {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatalf("write body: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func TestArtifactURL(t *testing.T) {
	f := NewReleaseFetcher("https://github.com/buildkite/agent/releases/download/", time.Minute)
	got := f.ArtifactURL("3.58.0", Platform{OS: "darwin", Arch: "arm64"})
	want := "https://github.com/buildkite/agent/releases/download/v3.58.0/buildkite-agent-darwin-arm64-3.58.0.tar.gz"
	if got != want {
		t.Fatalf("ArtifactURL = %s, want %s", got, want)
	}
}

func TestFetchAndUnpack(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "buildkite-agent", body: "#!/bin/sh\n", mode: 0o755},
		{name: "buildkite-agent.cfg", body: "token=\"xxx\"\n", mode: 0o644},
		{name: "hooks/", dir: true, mode: 0o755},
		{name: "hooks/pre-command", body: "echo hi\n", mode: 0o644},
	})

	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "stage")
	f := NewReleaseFetcher(srv.URL, time.Minute)
	platform := Platform{OS: "linux", Arch: "amd64"}

	dir, err := f.FetchAndUnpack(context.Background(), "3.58.0", platform, dest)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if dir != dest {
		t.Fatalf("expected %s, got %s", dest, dir)
	}
	if gotPath != "/v3.58.0/buildkite-agent-linux-amd64-3.58.0.tar.gz" {
		t.Fatalf("unexpected request path %s", gotPath)
	}
	if gotUA != userAgent {
		t.Fatalf("unexpected user agent %q", gotUA)
	}

	info, err := os.Stat(filepath.Join(dest, "buildkite-agent"))
	if err != nil {
		t.Fatalf("stat agent: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("agent binary should be executable, mode %v", info.Mode())
	}
	if _, err := os.Stat(filepath.Join(dest, "hooks", "pre-command")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, ArtifactName("3.58.0", platform))); !os.IsNotExist(err) {
		t.Fatalf("tarball should be removed after extraction")
	}
}

func TestFetchHTTPErrorIsDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewReleaseFetcher(srv.URL, time.Minute)
	_, err := f.FetchAndUnpack(context.Background(), "0.0.1", Platform{OS: "linux", Arch: "amd64"}, t.TempDir())
	var dlErr *registry.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if dlErr.Status == "" {
		t.Fatalf("expected status in error")
	}
}

func TestFetchCorruptArchiveIsArchiveError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a gzip stream"))
	}))
	defer srv.Close()

	f := NewReleaseFetcher(srv.URL, time.Minute)
	_, err := f.FetchAndUnpack(context.Background(), "1.0.0", Platform{OS: "linux", Arch: "amd64"}, t.TempDir())
	var archErr *registry.ArchiveError
	if !errors.As(err, &archErr) {
		t.Fatalf("expected ArchiveError, got %v", err)
	}
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	root := t.TempDir()
	archivePath := filepath.Join(root, "evil.tar.gz")
	data := buildTarGz(t, []tarEntry{{name: "../../escape", body: "x", mode: 0o644}})
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	dest := filepath.Join(root, "out")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := extractTarGz(archivePath, dest)
	var archErr *registry.ArchiveError
	if !errors.As(err, &archErr) {
		t.Fatalf("expected ArchiveError, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape")); !os.IsNotExist(err) {
		t.Fatalf("entry escaped destination")
	}
}

func TestSafeJoin(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"agent", true},
		{"./agent", true},
		{"a/../b", true},
		{"..", false},
		{"../x", false},
		{"a/../../x", false},
	}
	for _, tc := range cases {
		_, err := safeJoin("/tmp/dest", tc.name)
		if (err == nil) != tc.ok {
			t.Errorf("safeJoin(%q) err=%v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}
