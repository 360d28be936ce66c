// Package version exposes build metadata injected with -ldflags, e.g.
//
//	-X github.com/openshift-hyperfleet/kartograph-sub001/internal/version.Version=1.2.0
package version

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata reported by /health and graphctl.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}
