package observability

import "fmt"

// Set via -ldflags "-X .../observability.Version=..." at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
)

// VersionString renders the build identity for the version command.
func VersionString() string {
	if Date == "" {
		return fmt.Sprintf("drydock-scaffold %s (%s)", Version, Commit)
	}
	return fmt.Sprintf("drydock-scaffold %s (%s, built %s)", Version, Commit, Date)
}
