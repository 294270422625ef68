// Package models defines the file-level types shared by storage and indexing.
package models

// Entry describes one item directly under a listed directory.
type Entry struct {
	Path  string `json:"path"` // relative to the provider root, slash separated
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}
