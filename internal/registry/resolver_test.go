package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"3.58.0":    "3.58.0",
		"v3.58.0":   "3.58.0",
		" v3.58.0 ": "3.58.0",
		"V1.0":      "1.0",
		"":          "",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocalOverrideSetGet(t *testing.T) {
	dir := t.TempDir()
	o := NewLocalOverride(dir)

	if _, ok, err := o.Get(); err != nil || ok {
		t.Fatalf("expected no override, got ok=%v err=%v", ok, err)
	}

	if err := o.Set("  3.1.0\n"); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, ".localrc"))
	if string(data) != "3.1.0" {
		t.Fatalf("expected trimmed marker content, got %q", data)
	}

	if err := o.Set("3.2.0"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := o.Get()
	if err != nil || !ok || v != "3.2.0" {
		t.Fatalf("expected 3.2.0, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestLocalOverrideBlankMarker(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".localrc"), []byte("  \n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := NewLocalOverride(dir).Get(); err != nil || ok {
		t.Fatalf("blank marker must read as absent, got ok=%v err=%v", ok, err)
	}
}

func TestLocalOverrideIgnoresParentDirectories(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "child")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := NewLocalOverride(parent).Set("1.0.0"); err != nil {
		t.Fatalf("set parent: %v", err)
	}
	if _, ok, _ := NewLocalOverride(child).Get(); ok {
		t.Fatalf("override must not be inherited from a parent directory")
	}
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		local      string
		global     string
		wantVer    string
		wantSource Source
	}{
		{name: "local wins", local: "A", global: "B", wantVer: "A", wantSource: SourceLocal},
		{name: "global fallback", global: "B", wantVer: "B", wantSource: SourceGlobal},
		{name: "nothing configured", wantSource: SourceNone},
		{name: "local only", local: "A", wantVer: "A", wantSource: SourceLocal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			cwd := t.TempDir()
			local := NewLocalOverride(cwd)
			global := NewGlobalConfigFile(filepath.Join(root, "config.json"))
			if tc.local != "" {
				if err := local.Set(tc.local); err != nil {
					t.Fatalf("set local: %v", err)
				}
			}
			if tc.global != "" {
				if err := global.SetDefault(tc.global); err != nil {
					t.Fatalf("set global: %v", err)
				}
			}

			res, err := NewResolver(local, global).Resolve()
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if res.Version != tc.wantVer || res.Source != tc.wantSource {
				t.Fatalf("expected %q from %q, got %q from %q", tc.wantVer, tc.wantSource, res.Version, res.Source)
			}
			if res.Found() != (tc.wantSource != SourceNone) {
				t.Fatalf("Found() mismatch for %+v", res)
			}
		})
	}
}

func TestResolveDoesNotRequireInstall(t *testing.T) {
	cwd := t.TempDir()
	local := NewLocalOverride(cwd)
	if err := local.Set("9.9.9"); err != nil {
		t.Fatalf("set: %v", err)
	}
	res, err := NewResolver(local, NewGlobalConfigFile(filepath.Join(t.TempDir(), "config.json"))).Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Version != "9.9.9" {
		t.Fatalf("resolver must return the preference even when not installed, got %q", res.Version)
	}
}
