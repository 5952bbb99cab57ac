// Package version holds build-time version information for the deepdive
// binary. The variables are overridden at link time via -ldflags.
package version

// Version is the release version of the binary.
var Version = "dev"

// Commit is the Git hash the binary was built from.
var Commit = "<unknown>"

// Date is the build timestamp.
var Date = "<unknown>"
