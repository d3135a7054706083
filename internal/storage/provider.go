// Package storage defines the import/export directory abstraction.
package storage

import "time"

// File describes one Markdown file found in the directory.
type File struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for Markdown file exchange with the outside world.
type Provider interface {
	// List returns every .md file under dir (relative to the root).
	List(dir string) ([]File, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
}
