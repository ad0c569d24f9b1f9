package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/attendance"
)

// SQLiteStore implements Store on a relational schema: one row per roster
// name, one row per (date, student) mark.
type SQLiteStore struct {
	db storage.SQLDB
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// AddStudent inserts a roster row.
// PRE: name is non-empty and already trimmed
// POST: Returns domain.ErrDuplicateStudent when the name already exists
func (s *SQLiteStore) AddStudent(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM student WHERE name = ?)", name).Scan(&exists); err != nil {
		return fmt.Errorf("check student: %w", err)
	}
	if exists {
		return domain.ErrDuplicateStudent
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO student (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return tx.Commit()
}

// HasStudent reports whether name is on the roster.
// PRE: name is non-empty
// POST: Returns membership without modifying state
func (s *SQLiteStore) HasStudent(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM student WHERE name = ?)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check student: %w", err)
	}
	return exists, nil
}

// ListStudents returns the roster sorted by name.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLiteStore) ListStudents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM student ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveMark upserts the mark row for (class_date, student_name).
// PRE: m has been validated
// POST: Returns domain.ErrUnknownStudent when the student is not on the
// roster; otherwise exactly one row exists for the pair afterwards
func (s *SQLiteStore) SaveMark(ctx context.Context, m domain.Mark) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM student WHERE name = ?)", m.Student).Scan(&exists); err != nil {
		return fmt.Errorf("check student: %w", err)
	}
	if !exists {
		return domain.ErrUnknownStudent
	}

	query := `INSERT INTO attendance_mark (id, class_date, student_name, status, marked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(class_date, student_name) DO UPDATE SET status=excluded.status, marked_at=excluded.marked_at`
	if _, err := tx.ExecContext(ctx, query,
		uuid.New().String(),
		m.Date,
		m.Student,
		m.Status,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("save mark: %w", err)
	}
	return tx.Commit()
}

// ListRecords returns every mark grouped by date then student.
// PRE: none
// POST: Returns a non-nil map built fresh from the rows
func (s *SQLiteStore) ListRecords(ctx context.Context) (map[string]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT class_date, student_name, status FROM attendance_mark")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[string]map[string]string)
	for rows.Next() {
		var date, name, status string
		if err := rows.Scan(&date, &name, &status); err != nil {
			return nil, err
		}
		day, ok := records[date]
		if !ok {
			day = make(map[string]string)
			records[date] = day
		}
		day[name] = status
	}
	return records, rows.Err()
}
