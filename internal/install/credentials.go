package install

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bap/internal/registry"
)

// SetToken writes the agent registration token into the version's config
// file. Every existing token= line is replaced; if there is none a new line
// is appended.
func (l *Lifecycle) SetToken(id, token string) error {
	version := registry.Normalize(id)
	if err := ValidateVersion(version); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	path := l.ConfigPath(version)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &registry.NotInstalledError{Version: version}
		}
		return &registry.IoError{Op: "stat", Path: path, Err: err}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return &registry.IoError{Op: "read", Path: path, Err: err}
	}

	updated := replaceToken(string(content), token)
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return &registry.IoError{Op: "write", Path: path, Err: err}
	}
	l.logger.Printf("auth %s: token updated in %s", version, path)
	return nil
}

func replaceToken(content, token string) string {
	line := `token="` + token + `"`
	lines := strings.Split(content, "\n")
	replaced := false
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimLeft(l, " \t"), "token=") {
			lines[i] = line
			replaced = true
		}
	}
	if replaced {
		return strings.Join(lines, "\n")
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}
