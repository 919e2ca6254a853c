package scanner

import (
	"fmt"
	"io"
	"time"

	"tagfinder/logging"
)

// ProgressTracker tracks progress of an indexing run
type ProgressTracker struct {
	out        io.Writer
	totalFiles int
	processed  int
	skipped    int
	tagged     int
	errors     int
	failures   []ProcessImageResult
	lastPrint  time.Time
	interval   time.Duration
}

// NewProgressTracker creates a tracker for totalFiles images. A nil out
// disables the progress line.
func NewProgressTracker(totalFiles int, out io.Writer) *ProgressTracker {
	return &ProgressTracker{
		out:        out,
		totalFiles: totalFiles,
		interval:   500 * time.Millisecond,
	}
}

// Record updates the tracker with the result of one image
func (p *ProgressTracker) Record(result ProcessImageResult) {
	p.processed++

	switch {
	case !result.Success:
		p.errors++
		p.failures = append(p.failures, result)
		logging.LogImageProcessed(result.Path, false, result.Error)
	case result.Skipped:
		p.skipped++
	default:
		if result.Tagged {
			p.tagged++
		}
		logging.LogImageProcessed(result.Path, true, nil)
	}

	if p.out != nil && (time.Since(p.lastPrint) >= p.interval || p.processed == p.totalFiles) {
		p.display()
		p.lastPrint = time.Now()
	}
}

// display shows the progress line
func (p *ProgressTracker) display() {
	if p.errors > 0 {
		fmt.Fprintf(p.out, "\rProgress: %d/%d (Skipped: %d, Errors: %d)",
			p.processed, p.totalFiles, p.skipped, p.errors)
	} else {
		fmt.Fprintf(p.out, "\rProgress: %d/%d (Skipped: %d)",
			p.processed, p.totalFiles, p.skipped)
	}
}

// Summary returns the totals recorded so far
func (p *ProgressTracker) Summary(startTime time.Time) ScanSummary {
	return ScanSummary{
		Found:    p.totalFiles,
		Indexed:  p.processed - p.skipped - p.errors,
		Skipped:  p.skipped,
		Tagged:   p.tagged,
		Errors:   p.errors,
		Elapsed:  time.Since(startTime),
		Failures: p.failures,
	}
}

// PrintCompletionStats displays statistics after an indexing run
func PrintCompletionStats(out io.Writer, summary ScanSummary) {
	logging.LogInfo("scan completed",
		"found", summary.Found,
		"indexed", summary.Indexed,
		"skipped", summary.Skipped,
		"tagged", summary.Tagged,
		"errors", summary.Errors,
		"removed", summary.Removed,
		"elapsed", summary.Elapsed.String(),
	)

	fmt.Fprintln(out, "\nIndexing complete.")
	fmt.Fprintf(out, "Indexed %d of %d images in %v (%d unchanged).\n",
		summary.Indexed, summary.Found, summary.Elapsed.Round(time.Millisecond), summary.Skipped)
	fmt.Fprintf(out, "Images with a metadata block: %d\n", summary.Tagged)

	if summary.Removed > 0 {
		fmt.Fprintf(out, "Removed %d images no longer on disk.\n", summary.Removed)
	}

	if summary.Errors > 0 {
		fmt.Fprintf(out, "Encountered %d errors during indexing:\n", summary.Errors)
		for _, failure := range summary.Failures {
			fmt.Fprintf(out, "  %s: %v\n", failure.Path, failure.Error)
		}
	}
}
