package registry

import "fmt"

// IoError reports a filesystem failure on a registry path.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// ConfigParseError reports a config file that exists but is not valid JSON.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// NotInstalledError reports an operation on a version with no installed directory.
type NotInstalledError struct {
	Version string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("version %s is not installed", e.Version)
}

// DownloadError reports a non-success transport response while fetching a release.
type DownloadError struct {
	URL    string
	Status string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download %s: unexpected status %s", e.URL, e.Status)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ArchiveError reports a corrupt or unreadable release archive.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
