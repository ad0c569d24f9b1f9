package projections

import (
	"context"

	"rollcall/internal/domain/attendance"
)

// GetSummaryResult carries per-student attendance statistics.
type GetSummaryResult struct {
	Summary map[string]attendance.Summary
}

// GetSummaryDeps holds dependencies for GetSummary.
type GetSummaryDeps struct {
	StudentStore StudentListStore
	RecordsStore RecordsStore
}

// QueryGetSummary computes each student's present count against the number
// of distinct recorded dates, shared by every student.
// PRE: none
// POST: Every roster student has an entry; Summary is never nil
func QueryGetSummary(ctx context.Context, deps GetSummaryDeps) (GetSummaryResult, error) {
	students, err := deps.StudentStore.ListStudents(ctx)
	if err != nil {
		return GetSummaryResult{}, err
	}
	records, err := deps.RecordsStore.ListRecords(ctx)
	if err != nil {
		return GetSummaryResult{}, err
	}
	return GetSummaryResult{Summary: attendance.Summarize(students, records)}, nil
}
