package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"rollcall/internal/domain/attendance"
)

// MarkStore defines the store interface needed to record attendance.
type MarkStore interface {
	HasStudent(ctx context.Context, name string) (bool, error)
	SaveMark(ctx context.Context, m attendance.Mark) error
}

// MarkAttendanceInput carries input for the mark-attendance orchestrator.
// Date is optional: an empty Date means the caller's current calendar date.
// Status is required; callers resolve any defaulting before the call, so an
// empty Status fails validation here.
type MarkAttendanceInput struct {
	Student string
	Status  string
	Date    string
}

// MarkAttendanceDeps holds dependencies for MarkAttendance.
type MarkAttendanceDeps struct {
	Store MarkStore
	Now   func() time.Time // nil means time.Now
}

// ExecuteMarkAttendance records one attendance mark.
// An unknown student is reported before a bad status.
// PRE: Student may carry surrounding whitespace
// POST: Returns the mark actually saved, with defaults applied
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps MarkAttendanceDeps) (attendance.Mark, error) {
	student := strings.TrimSpace(input.Student)
	if student == "" {
		return attendance.Mark{}, attendance.ErrEmptyName
	}

	ok, err := deps.Store.HasStudent(ctx, student)
	if err != nil {
		return attendance.Mark{}, err
	}
	if !ok {
		return attendance.Mark{}, attendance.ErrUnknownStudent
	}

	if !attendance.ValidStatus(input.Status) {
		return attendance.Mark{}, attendance.ErrInvalidStatus
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	date := input.Date
	if date == "" {
		date = now().Format(attendance.DateFormat)
	}

	m := attendance.Mark{Student: student, Date: date, Status: input.Status}
	if err := m.Validate(); err != nil {
		return attendance.Mark{}, err
	}
	if err := deps.Store.SaveMark(ctx, m); err != nil {
		return attendance.Mark{}, err
	}

	slog.Info("attendance_event", "event", "attendance_marked", "student", m.Student, "status", m.Status, "date", m.Date)
	return m, nil
}
