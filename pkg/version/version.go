package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the program name used in version strings and the User-Agent
const Name = "git-get"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

// readBuildInfo is replaced in tests
var readBuildInfo = debug.ReadBuildInfo

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the current version info
func Get() Info {
	return Info{
		Version:   Short(),
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s %s/%s)",
		Name, i.Version, i.Commit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short returns the version. Binaries installed with `go install` carry no
// ldflags; their module version is used instead.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Full returns a full version string
func Full() string {
	return Get().String()
}

// UserAgent returns the User-Agent sent by HTTP-based fetch backends
func UserAgent() string {
	return Name + "/" + Short()
}
