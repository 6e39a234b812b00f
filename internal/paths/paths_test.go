package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePrefersFlag(t *testing.T) {
	flagRoot := t.TempDir()
	t.Setenv(RootEnv, t.TempDir())

	pp, err := Resolve(flagRoot)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if pp.Root != flagRoot {
		t.Fatalf("expected root %s, got %s", flagRoot, pp.Root)
	}
}

func TestResolveUsesEnv(t *testing.T) {
	envRoot := t.TempDir()
	t.Setenv(RootEnv, envRoot)

	pp, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if pp.Root != envRoot {
		t.Fatalf("expected root %s, got %s", envRoot, pp.Root)
	}
}

func TestResolveDefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(RootEnv, "")

	pp, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := filepath.Join(home, ".bap"); pp.Root != want {
		t.Fatalf("expected root %s, got %s", want, pp.Root)
	}
}

func TestLayout(t *testing.T) {
	root := t.TempDir()
	pp := New(root)

	cases := []struct {
		got  string
		want string
	}{
		{got: pp.ConfigFile, want: filepath.Join(root, "config.json")},
		{got: pp.VersionsFile, want: filepath.Join(root, "versions", "versions")},
		{got: pp.VersionDir("3.58.0"), want: filepath.Join(root, "bin", "3.58.0")},
		{got: LocalMarker(root), want: filepath.Join(root, ".localrc")},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("expected %s, got %s", tc.want, tc.got)
		}
	}
}

func TestEnsureCreatesHierarchyOnce(t *testing.T) {
	pp := New(filepath.Join(t.TempDir(), "root"))

	created, err := pp.Ensure()
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("expected 4 created paths, got %v", created)
	}
	data, err := os.ReadFile(pp.VersionsFile)
	if err != nil {
		t.Fatalf("read versions file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty versions file, got %q", data)
	}

	if err := os.WriteFile(pp.VersionsFile, []byte("1.0.0\n"), 0o644); err != nil {
		t.Fatalf("seed versions file: %v", err)
	}
	created, err = pp.Ensure()
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected nothing created on second run, got %v", created)
	}
	data, _ = os.ReadFile(pp.VersionsFile)
	if string(data) != "1.0.0\n" {
		t.Fatalf("ensure must not truncate existing versions file, got %q", data)
	}
}
