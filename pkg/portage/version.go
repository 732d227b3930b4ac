// Package portage exposes build-level metadata for the migration tool.
package portage

// Version is the tool version, overridable at build time with
// -ldflags "-X github.com/mesh-intelligence/portage/pkg/portage.Version=...".
var Version = "v0.1.0"
