package install

import (
	"context"
	"errors"
	"os"
	"testing"

	"bap/internal/registry"
)

func TestReplaceToken(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "replaces existing",
			content: "name=\"%hostname\"\ntoken=\"xxx\"\nbuild-path=\"/tmp\"\n",
			want:    "name=\"%hostname\"\ntoken=\"abc\"\nbuild-path=\"/tmp\"\n",
		},
		{
			name:    "replaces indented and repeated",
			content: "  token=old\n\ttoken=\"older\"\n",
			want:    "token=\"abc\"\ntoken=\"abc\"\n",
		},
		{
			name:    "leaves commented lines",
			content: "# token=\"sample\"\n",
			want:    "# token=\"sample\"\ntoken=\"abc\"\n",
		},
		{
			name:    "appends without trailing newline",
			content: "name=\"x\"",
			want:    "name=\"x\"\ntoken=\"abc\"\n",
		},
		{
			name:    "empty file",
			content: "",
			want:    "token=\"abc\"\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := replaceToken(tc.content, "abc"); got != tc.want {
				t.Fatalf("replaceToken:\n got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestSetTokenWritesConfig(t *testing.T) {
	lc, _ := newTestLifecycle(t, &fakeFetcher{})
	if _, err := lc.Install(context.Background(), "1.0.0"); err != nil {
		t.Fatalf("install: %v", err)
	}

	if err := lc.SetToken("v1.0.0", "  tok-123 \n"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	data, err := os.ReadFile(lc.ConfigPath("1.0.0"))
	if err != nil {
		t.Fatalf("read cfg: %v", err)
	}
	if string(data) != "token=\"tok-123\"\n" {
		t.Fatalf("unexpected cfg %q", data)
	}
}

func TestSetTokenNotInstalled(t *testing.T) {
	lc, _ := newTestLifecycle(t, &fakeFetcher{})
	err := lc.SetToken("4.0.0", "tok")
	var notInstalled *registry.NotInstalledError
	if !errors.As(err, &notInstalled) {
		t.Fatalf("expected NotInstalledError, got %v", err)
	}
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	lc, _ := newTestLifecycle(t, &fakeFetcher{})
	if err := lc.SetToken("1.0.0", "   "); err == nil {
		t.Fatalf("expected error for blank token")
	}
}
