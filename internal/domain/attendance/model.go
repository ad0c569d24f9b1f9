package attendance

import "errors"

// Valid attendance statuses. Comparison is case-sensitive.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// DateFormat is the calendar date layout used for record keys (ISO 8601).
const DateFormat = "2006-01-02"

// Domain errors
var (
	ErrEmptyName        = errors.New("student name cannot be empty")
	ErrDuplicateStudent = errors.New("student already exists")
	ErrUnknownStudent   = errors.New("student not found")
	ErrInvalidStatus    = errors.New(`status must be "present" or "absent"`)
)

// Mark records one student's attendance status on one class date.
// A later mark for the same student and date replaces the earlier one;
// there is no history.
type Mark struct {
	Student string
	Date    string // YYYY-MM-DD format
	Status  string
}

// Validate checks if the Mark has valid data.
// PRE: Mark struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Mark) Validate() error {
	if m.Student == "" {
		return ErrEmptyName
	}
	if m.Date == "" {
		return errors.New("class date must be set")
	}
	if !ValidStatus(m.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsPresent returns true if the mark records a presence.
func (m *Mark) IsPresent() bool {
	return m.Status == StatusPresent
}

// ValidStatus reports whether s is one of the two recognised statuses.
func ValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}
