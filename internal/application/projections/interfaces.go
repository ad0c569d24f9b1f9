package projections

import "context"

// StudentListStore interface for roster queries.
type StudentListStore interface {
	ListStudents(ctx context.Context) ([]string, error)
}

// RecordsStore interface for attendance record queries.
type RecordsStore interface {
	ListRecords(ctx context.Context) (map[string]map[string]string, error)
}
