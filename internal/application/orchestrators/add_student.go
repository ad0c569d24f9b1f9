package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"rollcall/internal/domain/attendance"
)

// RosterStore defines the store interface needed to grow the roster.
type RosterStore interface {
	AddStudent(ctx context.Context, name string) error
}

// AddStudentInput carries input for the add-student orchestrator.
type AddStudentInput struct {
	Name string
}

// AddStudentResult carries the canonical name that was added.
type AddStudentResult struct {
	Name string
}

// AddStudentDeps holds dependencies for AddStudent.
type AddStudentDeps struct {
	Store RosterStore
}

// ExecuteAddStudent adds one student to the roster.
// PRE: Name may carry surrounding whitespace
// POST: The trimmed name is on the roster exactly once, or a domain error
// says why not; the state is unchanged on failure
func ExecuteAddStudent(ctx context.Context, input AddStudentInput, deps AddStudentDeps) (AddStudentResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return AddStudentResult{}, attendance.ErrEmptyName
	}

	if err := deps.Store.AddStudent(ctx, name); err != nil {
		return AddStudentResult{}, err
	}

	slog.Info("roster_event", "event", "student_added", "student", name)
	return AddStudentResult{Name: name}, nil
}
