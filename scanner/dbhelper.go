package scanner

import (
	"database/sql"
	"fmt"

	"tagfinder/database"
	"tagfinder/logging"
	"tagfinder/scanner/processor"
)

// checkAndSkipIfUnchanged checks if an image can be skipped because it hasn't
// changed since it was catalogued. It returns nil when the image needs work.
func checkAndSkipIfUnchanged(db *sql.DB, proc *processor.TagProcessor, path string, options ScanOptions) *ProcessImageResult {
	exists, storedModTime, err := database.CheckImageExists(db, path)
	if err != nil {
		return &ProcessImageResult{
			Path:    path,
			Success: false,
			Error:   err,
		}
	}
	if !exists {
		return nil
	}

	modTime, err := proc.ModTime(path)
	if err != nil {
		return &ProcessImageResult{
			Path:    path,
			Success: false,
			Error:   err,
		}
	}

	storedTime, err := processor.ParseModTime(storedModTime)
	if err != nil {
		return &ProcessImageResult{
			Path:    path,
			Success: false,
			Error:   fmt.Errorf("cannot parse stored time for %s: %w", path, err),
		}
	}

	// If file hasn't been modified, skip processing
	if !modTime.After(storedTime) {
		if options.DebugMode {
			logging.DebugLog("skipping unchanged image", "path", path)
		}
		return &ProcessImageResult{
			Path:    path,
			Success: true,
			Skipped: true,
		}
	}

	return nil
}
