package scanner

import (
	"database/sql"
	"time"

	"github.com/go-git/go-billy/v5"

	"tagfinder/database"
	"tagfinder/logging"
	"tagfinder/metadata"
	"tagfinder/scanner/processor"
	"tagfinder/types"
)

// ScanAndStoreFolder lists the images in a folder and stores their tags in the
// catalog. Unchanged images are skipped unless ForceRewrite is set. Without
// KeepGoing the first failing image aborts the run.
func ScanAndStoreFolder(db *sql.DB, fsys billy.Filesystem, options ScanOptions) (*ScanSummary, error) {
	startTime := time.Now()

	if options.DebugMode {
		logging.DebugLog("starting image scan",
			"folder", options.FolderPath,
			"recursive", options.Recursive,
			"force", options.ForceRewrite)
	}

	paths, err := ListImages(fsys, options.FolderPath, options.Recursive)
	if err != nil {
		return nil, err
	}

	proc := processor.NewTagProcessor(fsys, options.MaxFileSize, options.DebugMode)
	tracker := NewProgressTracker(len(paths), options.Progress)

	for _, path := range paths {
		result := processAndStoreImage(db, proc, path, options)
		tracker.Record(result)
		if !result.Success && !options.KeepGoing {
			return nil, result.Error
		}
	}

	summary := tracker.Summary(startTime)

	if options.PruneMissing {
		removed, err := database.RemoveMissing(db, options.FolderPath, paths)
		if err != nil {
			return nil, err
		}
		summary.Removed = removed
	}

	return &summary, nil
}

// processAndStoreImage processes a single image and stores it in the database
func processAndStoreImage(db *sql.DB, proc *processor.TagProcessor, path string, options ScanOptions) ProcessImageResult {
	result := ProcessImageResult{
		Path:    path,
		Success: false,
	}

	// Skip processing if the image already exists and hasn't been modified
	if !options.ForceRewrite {
		if skipResult := checkAndSkipIfUnchanged(db, proc, path, options); skipResult != nil {
			return *skipResult
		}
	}

	record, err := proc.ProcessImage(path)
	if err != nil {
		result.Error = err
		return result
	}

	// A changed file replaces its stored row
	if err := database.StoreImageRecord(db, record, true); err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.Tagged = !record.Tags.IsAbsent()
	return result
}

// CollectTags reads the tags of every path in order. With keepGoing unset it
// behaves like metadata.ReadTagsForMany and aborts on the first failure.
// Otherwise failing files are left out of the associations and reported in
// the returned failures.
func CollectTags(reader *metadata.Reader, paths []string, keepGoing bool) ([]types.Association, []ProcessImageResult, error) {
	if !keepGoing {
		associations, err := reader.ReadTagsForMany(paths)
		if err != nil {
			logging.LogError("batch aborted", "error", err)
			return nil, nil, err
		}
		return associations, nil, nil
	}

	associations := make([]types.Association, 0, len(paths))
	var failures []ProcessImageResult
	for _, path := range paths {
		tags, err := reader.ReadTags(path)
		if err != nil {
			logging.LogImageProcessed(path, false, err)
			failures = append(failures, ProcessImageResult{Path: path, Error: err})
			continue
		}
		logging.LogImageProcessed(path, true, nil)
		associations = append(associations, types.Association{Path: path, Tags: tags})
	}
	return associations, failures, nil
}
