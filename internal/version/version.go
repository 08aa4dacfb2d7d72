// Package version carries build metadata for the sprawl binaries,
// surfaced by the -version flag and the /api/config endpoint.
package version

// Populated at build time via -ldflags "-X ...".
var (
	// Version is the release tag, or "dev" for local builds
	Version = "dev"
	// GitSHA is the commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is when the binary was built
	BuildTime = "unknown"
)
