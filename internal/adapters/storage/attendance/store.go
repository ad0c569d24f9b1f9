package attendance

import (
	"context"

	domain "rollcall/internal/domain/attendance"
)

// Store persists the class roster and attendance records.
// Implementations must be safe for concurrent use. Mutating methods enforce
// roster invariants themselves, so callers never race a check against a write.
type Store interface {
	// AddStudent adds a name to the roster.
	// Returns domain.ErrDuplicateStudent if the name is already present.
	AddStudent(ctx context.Context, name string) error

	// HasStudent reports whether a name is on the roster.
	HasStudent(ctx context.Context, name string) (bool, error)

	// ListStudents returns the roster sorted by name. Never nil.
	ListStudents(ctx context.Context) ([]string, error)

	// SaveMark records one mark, replacing any earlier mark for the same
	// student and date. Returns domain.ErrUnknownStudent if the student is
	// not on the roster.
	SaveMark(ctx context.Context, m domain.Mark) error

	// ListRecords returns every recorded date mapped to its per-student
	// statuses. The result is a copy the caller may keep. Never nil.
	ListRecords(ctx context.Context) (map[string]map[string]string, error)
}
