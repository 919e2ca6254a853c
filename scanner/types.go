package scanner

import (
	"io"
	"time"
)

// ScanOptions defines the options for an indexing run
type ScanOptions struct {
	FolderPath   string
	Recursive    bool
	ForceRewrite bool
	KeepGoing    bool // record per-file failures instead of aborting
	PruneMissing bool // drop catalogued images no longer on disk
	DebugMode    bool
	MaxFileSize  int64
	Progress     io.Writer // nil disables progress output
}

// ProcessImageResult holds the result of processing an image
type ProcessImageResult struct {
	Path    string
	Success bool
	Skipped bool
	Tagged  bool
	Error   error
}

// ScanSummary reports the totals of an indexing run
type ScanSummary struct {
	Found    int
	Indexed  int
	Skipped  int
	Tagged   int
	Errors   int
	Removed  int
	Elapsed  time.Duration
	Failures []ProcessImageResult
}
