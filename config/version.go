package config

// Set via -ldflags at build time.
var (
	Version    = "dev"
	CommitHash = "n/a"
)

// IsProduction reports whether this is a release build.
func IsProduction() bool {
	return CommitHash != "n/a"
}
