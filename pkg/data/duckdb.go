package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE SEQUENCE IF NOT EXISTS downloads_id_seq;
CREATE TABLE IF NOT EXISTS downloads (
	id BIGINT PRIMARY KEY DEFAULT nextval('downloads_id_seq'),
	url VARCHAR NOT NULL,
	folder VARCHAR NOT NULL,
	filename VARCHAR NOT NULL,
	path VARCHAR NOT NULL,
	size BIGINT NOT NULL,
	downloaded_at TIMESTAMP NOT NULL
);
`

// InitDuckDB opens (creating if needed) the history database at path and
// ensures the schema exists.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Repository stores download history.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveDownload records a completed download. A re-download of the same path
// replaces the previous record.
func (r *Repository) SaveDownload(d *Download) error {
	if _, err := r.db.Exec(`DELETE FROM downloads WHERE path = ?`, d.Path); err != nil {
		return fmt.Errorf("failed to replace download record: %w", err)
	}

	_, err := r.db.Exec(
		`INSERT INTO downloads (url, folder, filename, path, size, downloaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.URL, d.Folder, d.Filename, d.Path, d.Size, d.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	return nil
}

// ListDownloads returns the history, most recent first.
func (r *Repository) ListDownloads() ([]*Download, error) {
	rows, err := r.db.Query(
		`SELECT id, url, folder, filename, path, size, downloaded_at FROM downloads ORDER BY downloaded_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*Download
	for rows.Next() {
		d := &Download{}
		if err := rows.Scan(&d.ID, &d.URL, &d.Folder, &d.Filename, &d.Path, &d.Size, &d.DownloadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

// DeleteDownload removes a record by id.
func (r *Repository) DeleteDownload(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM downloads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}
	return nil
}
