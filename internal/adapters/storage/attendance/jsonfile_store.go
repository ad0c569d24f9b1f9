package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	domain "rollcall/internal/domain/attendance"
)

// document is the on-disk shape of the full tracker state.
type document struct {
	Students []string                     `json:"students"`
	Records  map[string]map[string]string `json:"records"`
}

// JSONFileStore keeps the roster and records in memory and rewrites one JSON
// document on every mutation. The whole read-modify-persist cycle of a
// mutation runs under a single write lock.
// Single-process access only; the file is not locked on disk.
type JSONFileStore struct {
	mu       sync.RWMutex
	path     string
	students map[string]struct{}
	records  map[string]map[string]string
}

// Compile-time check that *JSONFileStore satisfies Store.
var _ Store = (*JSONFileStore)(nil)

// NewJSONFileStore loads existing state from path.
// PRE: path is non-empty
// POST: a missing file yields an empty store; unreadable or malformed
// content is returned as an error with the file left untouched
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{
		path:     path,
		students: make(map[string]struct{}),
		records:  make(map[string]map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		// First run, start empty.
		return nil
	}
	if err != nil {
		return fmt.Errorf("read attendance file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse attendance file %s: %w", s.path, err)
	}

	for _, name := range doc.Students {
		s.students[name] = struct{}{}
	}
	for date, day := range doc.Records {
		entries := make(map[string]string, len(day))
		for name, status := range day {
			entries[name] = status
		}
		s.records[date] = entries
	}
	return nil
}

// save rewrites the full document, writing to a temp file and renaming it
// over the target so a crash mid-write never leaves a torn file.
// PRE: caller holds the write lock
func (s *JSONFileStore) save() error {
	doc := document{
		Students: make([]string, 0, len(s.students)),
		Records:  s.records,
	}
	for name := range s.students {
		doc.Students = append(doc.Students, name)
	}
	sort.Strings(doc.Students)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal attendance state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write attendance file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace attendance file: %w", err)
	}
	return nil
}

// AddStudent adds name to the roster and persists the change.
// PRE: name is non-empty and already trimmed
// POST: roster contains name exactly once; on persistence failure the
// in-memory roster is rolled back
func (s *JSONFileStore) AddStudent(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[name]; ok {
		return domain.ErrDuplicateStudent
	}
	s.students[name] = struct{}{}
	if err := s.save(); err != nil {
		delete(s.students, name)
		return err
	}
	return nil
}

// HasStudent reports whether name is on the roster.
func (s *JSONFileStore) HasStudent(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.students[name]
	return ok, nil
}

// ListStudents returns the roster sorted by name.
func (s *JSONFileStore) ListStudents(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.students))
	for name := range s.students {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveMark records a mark and persists the change. A later mark for the same
// student and date replaces the earlier one.
// PRE: m has been validated
// POST: on persistence failure the in-memory records are rolled back
func (s *JSONFileStore) SaveMark(ctx context.Context, m domain.Mark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[m.Student]; !ok {
		return domain.ErrUnknownStudent
	}

	day, hadDate := s.records[m.Date]
	if !hadDate {
		day = make(map[string]string)
		s.records[m.Date] = day
	}
	prev, hadPrev := day[m.Student]
	day[m.Student] = m.Status

	if err := s.save(); err != nil {
		switch {
		case hadPrev:
			day[m.Student] = prev
		case !hadDate:
			delete(s.records, m.Date)
		default:
			delete(day, m.Student)
		}
		return err
	}
	return nil
}

// ListRecords returns a deep copy of every recorded date.
func (s *JSONFileStore) ListRecords(ctx context.Context) (map[string]map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]string, len(s.records))
	for date, day := range s.records {
		entries := make(map[string]string, len(day))
		for name, status := range day {
			entries[name] = status
		}
		out[date] = entries
	}
	return out, nil
}
