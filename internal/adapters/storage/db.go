package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS student (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS attendance_mark (
		id TEXT PRIMARY KEY,
		class_date TEXT NOT NULL,
		student_name TEXT NOT NULL,
		status TEXT NOT NULL,
		marked_at TEXT NOT NULL,
		UNIQUE (class_date, student_name),
		FOREIGN KEY (student_name) REFERENCES student(name)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
