package projections

import "context"

// GetStudentsResult carries the roster.
type GetStudentsResult struct {
	Students []string
}

// GetStudentsDeps holds dependencies for GetStudents.
type GetStudentsDeps struct {
	Store StudentListStore
}

// QueryGetStudents returns every student on the roster, sorted by name.
// PRE: none
// POST: Students is never nil
func QueryGetStudents(ctx context.Context, deps GetStudentsDeps) (GetStudentsResult, error) {
	students, err := deps.Store.ListStudents(ctx)
	if err != nil {
		return GetStudentsResult{}, err
	}
	if students == nil {
		students = []string{}
	}
	return GetStudentsResult{Students: students}, nil
}
