// Package storage defines the file-system abstraction used for the content
// root and the generated site.
package storage

import "github.com/starford/folio/internal/models"

// Provider is the interface for rooted file operations.
type Provider interface {
	// Root returns the absolute directory all paths are relative to.
	Root() string
	// List returns the entries directly under dir (relative to root), sorted by name.
	List(dir string) ([]models.Entry, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Remove deletes path and anything below it. Missing paths are not an error.
	Remove(path string) error
}
