package tsm

// Release is the semantic version of this build. Both Release and
// GitCommit can be overwritten at link time, for example
//   go build -ldflags "-X github.com/okatau/tsm.GitCommit=$(git rev-parse --short HEAD)"
var (
	Release   = "v0.1.0-dev"
	GitCommit = ""
)

// Version returns the release followed by the commit when known.
func Version() string {
	if GitCommit == "" {
		return Release
	}
	return Release + " " + GitCommit
}
