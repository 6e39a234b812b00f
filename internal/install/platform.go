package install

import (
	"fmt"
	"runtime"
)

// Platform names the OS/arch pair used in release artifact file names.
type Platform struct {
	OS   string
	Arch string
}

func (p Platform) String() string {
	return p.OS + "-" + p.Arch
}

// DetectPlatform maps the running GOOS/GOARCH to a release platform.
func DetectPlatform() (Platform, error) {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) (Platform, error) {
	var p Platform
	switch goos {
	case "linux", "darwin":
		p.OS = goos
	default:
		return Platform{}, fmt.Errorf("unsupported OS: %s", goos)
	}
	switch goarch {
	case "amd64", "arm64":
		p.Arch = goarch
	default:
		return Platform{}, fmt.Errorf("unsupported architecture: %s", goarch)
	}
	return p, nil
}
