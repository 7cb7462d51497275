package version

import "runtime"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return Named("dialogbridge")
}

// Named formats build metadata for the given binary.
func Named(binary string) string {
	return binary + " " + Version + " (commit=" + Commit + ", date=" + Date + ", go=" + runtime.Version() + ")"
}
