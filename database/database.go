package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tagfinder/logging"
	"tagfinder/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := OpenDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		has_metadata INTEGER NOT NULL DEFAULT 0,
		size INTEGER,
		modified_at TEXT,
		content_hash TEXT,
		indexed_at TEXT
	);
	CREATE TABLE IF NOT EXISTS image_tags (
		image_id INTEGER NOT NULL REFERENCES images(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (image_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_tag ON image_tags(tag);
	CREATE INDEX IF NOT EXISTS idx_content_hash ON images(content_hash);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema in %s: %w", dbPath, err)
	}

	// Catalogs written before content hashing lack the column
	var hasHashColumn bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('images') WHERE name='content_hash'").Scan(&hasHashColumn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking for content_hash column: %w", err)
	}
	if !hasHashColumn {
		if _, err = db.Exec("ALTER TABLE images ADD COLUMN content_hash TEXT;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("error adding content_hash column: %w", err)
		}
		logging.DebugLog("added content_hash column to existing catalog schema")
	}

	return db, nil
}

// OpenDatabase opens an existing database connection. Foreign keys are
// enabled on every pooled connection so tag rows follow their image.
func OpenDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", dbPath, err)
	}
	return db, nil
}

// CheckImageExists checks if an image already exists in the database and
// returns its stored modification time
func CheckImageExists(db *sql.DB, path string) (bool, string, error) {
	var storedModTime sql.NullString
	err := db.QueryRow("SELECT modified_at FROM images WHERE path = ?", path).Scan(&storedModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("database error for %s: %w", path, err)
	}
	return true, storedModTime.String, nil
}

// StoreImageRecord stores an image and its ordered tags. Without forceRewrite
// an already catalogued path is left untouched.
func StoreImageRecord(db *sql.DB, record types.ImageRecord, forceRewrite bool) error {
	now := time.Now().Format(time.RFC3339Nano)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("cannot begin transaction for %s: %w", record.Path, err)
	}
	defer tx.Rollback()

	if !forceRewrite {
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM images WHERE path = ?", record.Path).Scan(&count); err != nil {
			return fmt.Errorf("database error for %s: %w", record.Path, err)
		}
		if count > 0 {
			return nil
		}
	}

	_, err = tx.Exec(`
		INSERT INTO images (path, has_metadata, size, modified_at, content_hash, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			has_metadata = excluded.has_metadata,
			size = excluded.size,
			modified_at = excluded.modified_at,
			content_hash = excluded.content_hash,
			indexed_at = excluded.indexed_at
	`,
		record.Path,
		!record.Tags.IsAbsent(),
		record.Size,
		record.ModifiedAt,
		record.ContentHash,
		now,
	)
	if err != nil {
		return fmt.Errorf("cannot insert data for %s: %w", record.Path, err)
	}

	var imageID int64
	if err := tx.QueryRow("SELECT id FROM images WHERE path = ?", record.Path).Scan(&imageID); err != nil {
		return fmt.Errorf("cannot get id for %s: %w", record.Path, err)
	}

	if _, err := tx.Exec("DELETE FROM image_tags WHERE image_id = ?", imageID); err != nil {
		return fmt.Errorf("cannot clear tags for %s: %w", record.Path, err)
	}

	stmt, err := tx.Prepare("INSERT INTO image_tags (image_id, position, tag) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %w", record.Path, err)
	}
	defer stmt.Close()

	for position, tag := range record.Tags.Tags() {
		if _, err := stmt.Exec(imageID, position, tag); err != nil {
			return fmt.Errorf("cannot insert tag %q for %s: %w", tag, record.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit %s: %w", record.Path, err)
	}
	return nil
}

// LoadRecords returns every catalogued image ordered by path
func LoadRecords(db *sql.DB) ([]types.ImageRecord, error) {
	rows, err := db.Query(`
		SELECT i.id, i.path, i.has_metadata, i.size, i.modified_at, i.content_hash, i.indexed_at, t.tag
		FROM images i
		LEFT JOIN image_tags t ON t.image_id = i.id
		ORDER BY i.path, t.position
	`)
	if err != nil {
		return nil, fmt.Errorf("cannot query catalog: %w", err)
	}
	defer rows.Close()

	var records []types.ImageRecord
	var current *types.ImageRecord
	var tags []string
	var hasMetadata bool

	flush := func() {
		if current == nil {
			return
		}
		if hasMetadata {
			current.Tags = types.Present(tags)
		} else {
			current.Tags = types.Absent()
		}
		records = append(records, *current)
	}

	for rows.Next() {
		var (
			id                               int64
			path                             string
			metadata                         bool
			size                             sql.NullInt64
			modifiedAt, contentHash, indexed sql.NullString
			tag                              sql.NullString
		)
		if err := rows.Scan(&id, &path, &metadata, &size, &modifiedAt, &contentHash, &indexed, &tag); err != nil {
			return nil, fmt.Errorf("cannot read catalog row: %w", err)
		}

		if current == nil || current.ID != id {
			flush()
			current = &types.ImageRecord{
				ID:          id,
				Path:        path,
				Size:        size.Int64,
				ModifiedAt:  modifiedAt.String,
				ContentHash: contentHash.String,
				IndexedAt:   indexed.String,
			}
			tags = nil
			hasMetadata = metadata
		}
		if tag.Valid {
			tags = append(tags, tag.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read catalog: %w", err)
	}
	flush()

	return records, nil
}

// LoadAssociations returns the (path, tags) pairs of every catalogued image
// ordered by path
func LoadAssociations(db *sql.DB) ([]types.Association, error) {
	records, err := LoadRecords(db)
	if err != nil {
		return nil, err
	}
	associations := make([]types.Association, 0, len(records))
	for _, record := range records {
		associations = append(associations, record.Association())
	}
	return associations, nil
}

// RemoveMissing deletes catalogued images under root that are not in keep.
// It returns the number of images removed.
func RemoveMissing(db *sql.DB, root string, keep []string) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		keepSet[path] = struct{}{}
	}

	rows, err := db.Query("SELECT path FROM images")
	if err != nil {
		return 0, fmt.Errorf("cannot query catalog: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("cannot read catalog row: %w", err)
		}
		if !underRoot(path, root) {
			continue
		}
		if _, ok := keepSet[path]; !ok {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("cannot read catalog: %w", err)
	}

	for _, path := range stale {
		if _, err := db.Exec("DELETE FROM images WHERE path = ?", path); err != nil {
			return 0, fmt.Errorf("cannot remove %s: %w", path, err)
		}
		logging.DebugLog("removed missing image from catalog", "path", path)
	}
	return len(stale), nil
}

// underRoot reports whether path lies inside root, both written the way the
// scanner joins them
func underRoot(path, root string) bool {
	root = filepath.Clean(root)
	if root == "." {
		return !filepath.IsAbs(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ScanStats contains statistics about the catalog
type ScanStats struct {
	TotalImages  int `json:"total_images" yaml:"total_images"`
	WithMetadata int `json:"with_metadata" yaml:"with_metadata"`
	DistinctTags int `json:"distinct_tags" yaml:"distinct_tags"`
}

// GetScanStats retrieves statistics about catalogued images
func GetScanStats(db *sql.DB) (*ScanStats, error) {
	var stats ScanStats

	err := db.QueryRow("SELECT COUNT(*), COALESCE(SUM(has_metadata), 0) FROM images").
		Scan(&stats.TotalImages, &stats.WithMetadata)
	if err != nil {
		return nil, fmt.Errorf("failed to get total images: %w", err)
	}

	err = db.QueryRow("SELECT COUNT(DISTINCT tag) FROM image_tags").Scan(&stats.DistinctTags)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct tags: %w", err)
	}

	return &stats, nil
}
