package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"tagfinder/logging"
	"tagfinder/types"
)

// IsImageFile checks if a file name carries a JPEG extension, ignoring case
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// SupportedExtensions returns the image extensions the collector accepts
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg"}
}

// ListImages returns the JPEG files in root. With recursive set, files in
// subdirectories at any depth are included, each directory's files before
// its subdirectories and both in name order.
//
// Symlinks to regular files are listed; symlinked directories are never
// entered, so link cycles cannot loop. A directory that cannot be read fails
// the whole listing with *types.IOError.
func ListImages(fsys billy.Filesystem, root string, recursive bool) ([]string, error) {
	var images []string
	pending := []string{root}

	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return nil, &types.IOError{Op: "readdir", Path: dir, Err: err}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		var subdirs []string
		for _, entry := range entries {
			path := fsys.Join(dir, entry.Name())
			mode := entry.Mode()

			switch {
			case mode.IsDir():
				if recursive {
					subdirs = append(subdirs, path)
				}
			case mode&os.ModeSymlink != 0:
				if !IsImageFile(entry.Name()) {
					continue
				}
				target, err := fsys.Stat(path)
				if err != nil {
					logging.DebugLog("skipping dangling symlink", "path", path, "error", err)
					continue
				}
				if target.Mode().IsRegular() {
					images = append(images, path)
				}
			case mode.IsRegular():
				if IsImageFile(entry.Name()) {
					images = append(images, path)
				}
			}
		}

		// pushed in reverse so the first subdirectory is walked next
		for i := len(subdirs) - 1; i >= 0; i-- {
			pending = append(pending, subdirs[i])
		}
	}

	return images, nil
}
