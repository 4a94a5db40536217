package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ninegrid/logging"
	"ninegrid/types"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath keeps tile blobs for the lifetime of the process only
const MemoryPath = ":memory:"

// InitDatabase initializes and returns a tile blob store connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Each new connection to :memory: is a separate database
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS tiles (
		handle TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		tile_index INTEGER NOT NULL,
		download_name TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		data BLOB,
		created_at TEXT,
		UNIQUE(batch_id, tile_index)
	);
	CREATE INDEX IF NOT EXISTS idx_tiles_batch ON tiles(batch_id);
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		download_name TEXT NOT NULL,
		exported_at TEXT,
		error TEXT
	);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// TileHandle returns the address of a tile blob within a batch
func TileHandle(batchID string, index int) string {
	return fmt.Sprintf("tile://%s/%d", batchID, index)
}

// ParseHandle splits a handle into its batch ID and tile index
func ParseHandle(handle string) (string, int, error) {
	rest, ok := strings.CutPrefix(handle, "tile://")
	if !ok {
		return "", 0, fmt.Errorf("invalid tile handle %q", handle)
	}
	slash := strings.LastIndexByte(rest, '/')
	if slash <= 0 {
		return "", 0, fmt.Errorf("invalid tile handle %q", handle)
	}
	index, err := strconv.Atoi(rest[slash+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid tile index in %q: %w", handle, err)
	}
	return rest[:slash], index, nil
}

// StoreTile stores the encoded tile and returns its handle
func StoreTile(db *sql.DB, batchID string, tile types.Tile) (string, error) {
	handle := TileHandle(batchID, tile.Index)
	now := time.Now().Format(time.RFC3339)

	_, err := db.Exec(`
		INSERT INTO tiles (
			handle, batch_id, tile_index, download_name, width, height, data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		handle,
		batchID,
		tile.Index,
		tile.DownloadName,
		tile.Bounds.Dx(),
		tile.Bounds.Dy(),
		tile.Pixels,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("cannot store tile %s: %w", handle, err)
	}

	return handle, nil
}

// LoadTile returns the encoded bytes behind a handle
func LoadTile(db *sql.DB, handle string) ([]byte, error) {
	var data []byte
	err := db.QueryRow("SELECT data FROM tiles WHERE handle = ?", handle).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tile handle %s has been released", handle)
	}
	if err != nil {
		return nil, fmt.Errorf("database error for %s: %w", handle, err)
	}
	return data, nil
}

// ReleaseBatch drops every tile blob of a batch and returns how many were freed
func ReleaseBatch(db *sql.DB, batchID string) (int64, error) {
	res, err := db.Exec("DELETE FROM tiles WHERE batch_id = ?", batchID)
	if err != nil {
		return 0, fmt.Errorf("cannot release batch %s: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	logging.DebugLog("Released %d tile handles of batch %s", n, batchID)
	return n, nil
}

// ReleaseAll drops every tile blob in the store
func ReleaseAll(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM tiles")
	if err != nil {
		return 0, fmt.Errorf("cannot release tiles: %w", err)
	}
	return res.RowsAffected()
}

// CountHandles returns the number of live tile blobs
func CountHandles(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tiles: %w", err)
	}
	return count, nil
}

// RecordExport records one save attempt; exportErr is nil on success
func RecordExport(db *sql.DB, batchID, name string, exportErr error) error {
	var errText sql.NullString
	if exportErr != nil {
		errText = sql.NullString{String: exportErr.Error(), Valid: true}
	}

	_, err := db.Exec(
		"INSERT INTO exports (batch_id, download_name, exported_at, error) VALUES (?, ?, ?, ?)",
		batchID, name, time.Now().Format(time.RFC3339), errText,
	)
	if err != nil {
		return fmt.Errorf("cannot record export of %s: %w", name, err)
	}
	return nil
}

// ExportStats contains statistics from the exports of a batch
type ExportStats struct {
	Exported   int
	ErrorCount int
}

// GetExportStats retrieves statistics about exports of a batch
func GetExportStats(db *sql.DB, batchID string) (*ExportStats, error) {
	var stats ExportStats

	err := db.QueryRow(
		"SELECT COUNT(*) FROM exports WHERE batch_id = ? AND error IS NULL", batchID,
	).Scan(&stats.Exported)
	if err != nil {
		return nil, fmt.Errorf("failed to count exports: %w", err)
	}

	err = db.QueryRow(
		"SELECT COUNT(*) FROM exports WHERE batch_id = ? AND error IS NOT NULL", batchID,
	).Scan(&stats.ErrorCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count export errors: %w", err)
	}

	return &stats, nil
}
