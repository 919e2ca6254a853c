// Package metadata reads the tag list embedded in an image's XMP packet.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"

	"tagfinder/bytescan"
	"tagfinder/types"
	"tagfinder/vfs"
)

// ErrFileTooLarge is wrapped in the IOError returned for files over MaxFileSize
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// Reader extracts tags from image files on a filesystem
type Reader struct {
	FS      billy.Filesystem
	Markers bytescan.Markers

	// MaxFileSize caps how many bytes are buffered per file. Zero means no cap.
	MaxFileSize int64
}

// NewReader creates a Reader using the XMP markers
func NewReader(fsys billy.Filesystem) *Reader {
	return &Reader{
		FS:      fsys,
		Markers: bytescan.XMPMarkers(),
	}
}

// ReadTags reads the tags of the image at path on fsys
func ReadTags(fsys billy.Filesystem, path string) (types.TagSet, error) {
	return NewReader(fsys).ReadTags(path)
}

// ReadTagsForMany reads tags for every path in order. The first failure aborts
// the batch and no associations are returned.
func ReadTagsForMany(fsys billy.Filesystem, paths []string) ([]types.Association, error) {
	return NewReader(fsys).ReadTagsForMany(paths)
}

// ReadFileTags reads an image on the host filesystem
func ReadFileTags(path string) (types.TagSet, error) {
	return ReadTags(vfs.NewOS(), path)
}

// ReadTags reads the whole file at path and extracts its tags. A file without
// a metadata block yields types.Absent() and no error.
func (r *Reader) ReadTags(path string) (types.TagSet, error) {
	tags, _, err := r.ReadTagsAndContent(path)
	return tags, err
}

// ReadTagsAndContent is ReadTags that also hands back the bytes it read, for
// callers that need more from the file than its tags
func (r *Reader) ReadTagsAndContent(path string) (types.TagSet, []byte, error) {
	raw, err := r.ReadFile(path)
	if err != nil {
		return types.Absent(), nil, err
	}

	tags, err := r.Extract(raw)
	if err != nil {
		return types.Absent(), nil, withPath(err, path)
	}
	return tags, raw, nil
}

// ReadTagsForMany reads tags for every path in order
func (r *Reader) ReadTagsForMany(paths []string) ([]types.Association, error) {
	associations := make([]types.Association, 0, len(paths))
	for _, path := range paths {
		tags, err := r.ReadTags(path)
		if err != nil {
			return nil, err
		}
		associations = append(associations, types.Association{Path: path, Tags: tags})
	}
	return associations, nil
}

// ReadFile returns the complete contents of path. The file is closed before
// returning on every path.
func (r *Reader) ReadFile(path string) ([]byte, error) {
	file, err := r.FS.Open(path)
	if err != nil {
		return nil, &types.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	var src io.Reader = file
	if r.MaxFileSize > 0 {
		src = io.LimitReader(file, r.MaxFileSize+1)
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, &types.IOError{Op: "read", Path: path, Err: err}
	}
	if r.MaxFileSize > 0 && int64(len(raw)) > r.MaxFileSize {
		return nil, &types.IOError{
			Op:   "read",
			Path: path,
			Err:  fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, r.MaxFileSize),
		}
	}
	return raw, nil
}

// Extract pulls the tags out of raw file contents
func (r *Reader) Extract(raw []byte) (types.TagSet, error) {
	block, found, err := bytescan.FindBlock(raw, r.Markers.BlockOpen, r.Markers.BlockClose)
	if err != nil {
		return types.Absent(), err
	}
	if !found {
		return types.Absent(), nil
	}

	items := bytescan.FindAll(block, r.Markers.ItemOpen, r.Markers.ItemClose)
	tags := make([]string, 0, len(items))
	for i, item := range items {
		if !utf8.Valid(item) {
			return types.Absent(), &types.DecodeError{Index: i, Raw: append([]byte(nil), item...)}
		}
		tags = append(tags, string(item))
	}
	return types.Present(tags), nil
}

// ExtractTags pulls XMP tags out of raw file contents
func ExtractTags(raw []byte) (types.TagSet, error) {
	return (&Reader{Markers: bytescan.XMPMarkers()}).Extract(raw)
}

// withPath records the file path on extraction errors
func withPath(err error, path string) error {
	var multi *types.MultipleBlocksError
	if errors.As(err, &multi) {
		multi.Path = path
		return err
	}
	var decode *types.DecodeError
	if errors.As(err, &decode) {
		decode.Path = path
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}
