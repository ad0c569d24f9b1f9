package attendance

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/attendance"
)

func openSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: state is per connection, keep the pool at one.
	db.SetMaxOpenConns(1)
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

// TestSQLiteStore_AddStudent tests roster insertion and duplicate rejection.
func TestSQLiteStore_AddStudent(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	if err := s.AddStudent(ctx, "Alice"); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	if err := s.AddStudent(ctx, "Alice"); !errors.Is(err, domain.ErrDuplicateStudent) {
		t.Errorf("duplicate AddStudent error = %v, want ErrDuplicateStudent", err)
	}

	ok, err := s.HasStudent(ctx, "Alice")
	if err != nil || !ok {
		t.Errorf("HasStudent(Alice) = %v, %v, want true, nil", ok, err)
	}
	ok, _ = s.HasStudent(ctx, "Bob")
	if ok {
		t.Error("HasStudent(Bob) = true, want false")
	}
}

// TestSQLiteStore_ListStudents verifies sorted, non-nil output.
func TestSQLiteStore_ListStudents(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	students, err := s.ListStudents(ctx)
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if students == nil || len(students) != 0 {
		t.Errorf("ListStudents on empty roster = %v, want empty non-nil slice", students)
	}

	for _, name := range []string{"Carol", "Alice", "Bob"} {
		if err := s.AddStudent(ctx, name); err != nil {
			t.Fatalf("AddStudent(%q): %v", name, err)
		}
	}
	students, _ = s.ListStudents(ctx)
	if !reflect.DeepEqual(students, []string{"Alice", "Bob", "Carol"}) {
		t.Errorf("ListStudents = %v, want sorted [Alice Bob Carol]", students)
	}
}

// TestSQLiteStore_SaveMark tests roster enforcement and the upsert.
func TestSQLiteStore_SaveMark(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	mark := domain.Mark{Student: "Alice", Date: "2024-01-01", Status: domain.StatusPresent}
	if err := s.SaveMark(ctx, mark); !errors.Is(err, domain.ErrUnknownStudent) {
		t.Errorf("SaveMark for unknown student error = %v, want ErrUnknownStudent", err)
	}

	if err := s.AddStudent(ctx, "Alice"); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	if err := s.SaveMark(ctx, mark); err != nil {
		t.Fatalf("SaveMark: %v", err)
	}

	mark.Status = domain.StatusAbsent
	if err := s.SaveMark(ctx, mark); err != nil {
		t.Fatalf("SaveMark overwrite: %v", err)
	}

	records, err := s.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	want := map[string]map[string]string{
		"2024-01-01": {"Alice": "absent"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("ListRecords = %v, want %v", records, want)
	}
}

// TestSQLiteStore_ListRecords verifies grouping across dates and students.
func TestSQLiteStore_ListRecords(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	records, err := s.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("ListRecords on empty store = %v, want empty non-nil map", records)
	}

	for _, name := range []string{"Alice", "Bob"} {
		if err := s.AddStudent(ctx, name); err != nil {
			t.Fatalf("AddStudent(%q): %v", name, err)
		}
	}
	marks := []domain.Mark{
		{Student: "Alice", Date: "2024-01-01", Status: domain.StatusPresent},
		{Student: "Alice", Date: "2024-01-02", Status: domain.StatusPresent},
		{Student: "Bob", Date: "2024-01-02", Status: domain.StatusAbsent},
	}
	for _, m := range marks {
		if err := s.SaveMark(ctx, m); err != nil {
			t.Fatalf("SaveMark(%+v): %v", m, err)
		}
	}

	records, _ = s.ListRecords(ctx)
	want := map[string]map[string]string{
		"2024-01-01": {"Alice": "present"},
		"2024-01-02": {"Alice": "present", "Bob": "absent"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("ListRecords = %v, want %v", records, want)
	}
}
