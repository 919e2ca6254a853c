package processor

import (
	"encoding/hex"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/zeebo/blake3"

	"tagfinder/logging"
	"tagfinder/metadata"
	"tagfinder/types"
)

// TagProcessor is an adapter between the scanner and the metadata reader. It
// reads each file once and derives both the tags and the catalog fields from
// that single read.
type TagProcessor struct {
	DebugMode bool
	reader    *metadata.Reader
}

// NewTagProcessor creates a TagProcessor reading from fsys
func NewTagProcessor(fsys billy.Filesystem, maxFileSize int64, debugMode bool) *TagProcessor {
	reader := metadata.NewReader(fsys)
	reader.MaxFileSize = maxFileSize
	return &TagProcessor{
		DebugMode: debugMode,
		reader:    reader,
	}
}

// Reader returns the metadata reader used by the processor
func (p *TagProcessor) Reader() *metadata.Reader {
	return p.reader
}

// ModTime returns the modification time of path in catalog format
func (p *TagProcessor) ModTime(path string) (time.Time, error) {
	info, err := p.reader.FS.Stat(path)
	if err != nil {
		return time.Time{}, &types.IOError{Op: "stat", Path: path, Err: err}
	}
	return info.ModTime(), nil
}

// ProcessImage reads path and returns its catalog record
func (p *TagProcessor) ProcessImage(path string) (types.ImageRecord, error) {
	info, err := p.reader.FS.Stat(path)
	if err != nil {
		return types.ImageRecord{}, &types.IOError{Op: "stat", Path: path, Err: err}
	}

	tags, raw, err := p.reader.ReadTagsAndContent(path)
	if err != nil {
		return types.ImageRecord{}, err
	}

	digest := blake3.Sum256(raw)
	record := types.ImageRecord{
		Path:        path,
		Tags:        tags,
		Size:        int64(len(raw)),
		ModifiedAt:  FormatModTime(info.ModTime()),
		ContentHash: hex.EncodeToString(digest[:]),
	}

	if p.DebugMode {
		if tags.IsAbsent() {
			logging.DebugLog("no metadata block", "path", path)
		} else {
			logging.DebugLog("read tags", "path", path, "tags", tags.Tags())
		}
	}

	return record, nil
}

// FormatModTime renders a modification time the way the catalog stores it
func FormatModTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseModTime parses a stored modification time
func ParseModTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
