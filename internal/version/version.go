// internal/version/version.go
package version

// Version is stamped by the release workflow; the default marks dev builds.
var Version = "0.1.0-dev"
