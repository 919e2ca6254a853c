// Package vfs supplies the go-billy filesystems the scanner and metadata
// reader work against: the host filesystem in production and an in-memory
// one in tests.
package vfs

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// NativeFS is a billy.Filesystem over the host filesystem. Paths are used as
// given, so relative paths resolve against the working directory.
type NativeFS struct {
	osfs.ChrootOS
}

// Chroot returns a new filesystem rooted at the provided path.
func (n *NativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (n *NativeFS) Root() string {
	return "/"
}

// NewOS returns the host filesystem
func NewOS() billy.Filesystem {
	return &NativeFS{}
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() billy.Filesystem {
	return memfs.New()
}
