// Package gnbackbone builds a taxonomic backbone from flat Darwin Core
// checklists and resolves free-text taxon names against it.
package gnbackbone

var (
	// Version of gnbackbone, set during build.
	Version = "v0.1.0"
	// Build timestamp, set during build.
	Build = "n/a"
)
