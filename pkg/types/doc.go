// Package types defines the shared catalog entity types, run configuration,
// run result contract, and standard errors for the Portage migration tool.
package types
