package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"rollcall/internal/application/orchestrators"
	"rollcall/internal/application/projections"
	"rollcall/internal/domain/attendance"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// guidePath is the markdown source for the operator guide page.
const guidePath = "docs/guide.md"

// registerRoutes attaches all application routes to the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/add_student", handleAddStudent)
	mux.HandleFunc("/mark_attendance", handleMarkAttendance)
	mux.HandleFunc("/get_students", handleGetStudents)
	mux.HandleFunc("/get_summary", handleGetSummary)
	mux.HandleFunc("/get_records", handleGetRecords)
	mux.HandleFunc("/guide", handleGuide)
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/debug/perf", handlePerfSnapshot)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as the response body.
// The tracker endpoints reply 200 for success and failure alike; failures
// are carried in the payload, never in the status code.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// errorReply logs the real error and writes the catch-all failure shape.
func errorReply(w http.ResponseWriter, err error) {
	slog.Error("request_error", "error", err.Error())
	writeJSON(w, statusResponse{Success: false, Message: "Error: " + err.Error()})
}

// statusResponse is the reply shape for the two mutation endpoints.
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type studentsResponse struct {
	Success  bool     `json:"success"`
	Students []string `json:"students"`
}

type summaryResponse struct {
	Success bool                          `json:"success"`
	Summary map[string]attendance.Summary `json:"summary"`
}

type recordsResponse struct {
	Success bool                         `json:"success"`
	Records map[string]map[string]string `json:"records"`
}

// handleAddStudent handles POST /add_student.
func handleAddStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := strictDecode(r, &input); err != nil {
		errorReply(w, err)
		return
	}
	name := strings.TrimSpace(input.Name)

	deps := orchestrators.AddStudentDeps{Store: stores.Tracker}
	result, err := orchestrators.ExecuteAddStudent(r.Context(), orchestrators.AddStudentInput{Name: name}, deps)
	switch {
	case err == nil:
		writeJSON(w, statusResponse{Success: true, Message: "Successfully added student: " + result.Name})
	case errors.Is(err, attendance.ErrEmptyName):
		writeJSON(w, statusResponse{Success: false, Message: "Student name cannot be empty"})
	case errors.Is(err, attendance.ErrDuplicateStudent):
		writeJSON(w, statusResponse{Success: false, Message: fmt.Sprintf(`Student "%s" already exists`, name)})
	default:
		errorReply(w, err)
	}
}

// handleMarkAttendance handles POST /mark_attendance.
// Status defaults to present and date to today when the body omits them.
func handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Student string  `json:"student"`
		Status  *string `json:"status"`
		Date    string  `json:"date"`
	}
	if err := strictDecode(r, &input); err != nil {
		errorReply(w, err)
		return
	}
	student := strings.TrimSpace(input.Student)

	// Only a missing status key means present; an empty value fails validation.
	status := attendance.StatusPresent
	if input.Status != nil {
		status = *input.Status
	}

	deps := orchestrators.MarkAttendanceDeps{Store: stores.Tracker, Now: timeNow}
	mark, err := orchestrators.ExecuteMarkAttendance(r.Context(), orchestrators.MarkAttendanceInput{
		Student: student,
		Status:  status,
		Date:    input.Date,
	}, deps)
	switch {
	case err == nil:
		writeJSON(w, statusResponse{Success: true, Message: fmt.Sprintf("Marked %s as %s on %s", mark.Student, mark.Status, mark.Date)})
	case errors.Is(err, attendance.ErrEmptyName):
		writeJSON(w, statusResponse{Success: false, Message: "Student name cannot be empty"})
	case errors.Is(err, attendance.ErrUnknownStudent):
		writeJSON(w, statusResponse{Success: false, Message: fmt.Sprintf(`Student "%s" not found`, student)})
	case errors.Is(err, attendance.ErrInvalidStatus):
		writeJSON(w, statusResponse{Success: false, Message: `Status must be "present" or "absent"`})
	default:
		errorReply(w, err)
	}
}

// handleGetStudents handles GET /get_students.
func handleGetStudents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetStudents(r.Context(), projections.GetStudentsDeps{Store: stores.Tracker})
	if err != nil {
		errorReply(w, err)
		return
	}
	writeJSON(w, studentsResponse{Success: true, Students: result.Students})
}

// handleGetSummary handles GET /get_summary.
func handleGetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := projections.GetSummaryDeps{
		StudentStore: stores.Tracker,
		RecordsStore: stores.Tracker,
	}
	result, err := projections.QueryGetSummary(r.Context(), deps)
	if err != nil {
		errorReply(w, err)
		return
	}
	writeJSON(w, summaryResponse{Success: true, Summary: result.Summary})
}

// handleGetRecords handles GET /get_records.
func handleGetRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetRecords(r.Context(), projections.GetRecordsDeps{Store: stores.Tracker})
	if err != nil {
		errorReply(w, err)
		return
	}
	writeJSON(w, recordsResponse{Success: true, Records: result.Records})
}

// guideTemplate wraps rendered markdown in a minimal page shell.
var guideTemplate = template.Must(template.New("guide").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Rollcall Guide</title>
<style>
body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
code { background: #f8f9fa; padding: 2px 4px; border-radius: 3px; }
pre { background: #f8f9fa; padding: 10px; border-radius: 5px; overflow-x: auto; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// handleGuide handles GET /guide, serving the operator guide rendered from markdown.
func handleGuide(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	md, err := os.ReadFile(guidePath)
	if err != nil {
		slog.Error("guide_read_failed", "path", guidePath, "error", err.Error())
		http.Error(w, "guide unavailable", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert(md, &buf); err != nil {
		slog.Error("guide_render_failed", "error", err.Error())
		http.Error(w, "guide unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	guideTemplate.Execute(w, map[string]any{"Body": template.HTML(buf.String())})
}

// handleHealthz handles GET /healthz.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{Success: true, Message: "ok"})
}

// handlePerfSnapshot handles GET /debug/perf.
// Returns aggregated request and query timings from the ring buffer.
// ?minutes=N bounds the window (default 60).
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if perfCollector == nil {
		writeJSON(w, statusResponse{Success: false, Message: "perf collection disabled"})
		return
	}

	minutes := 60
	if v := r.URL.Query().Get("minutes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minutes = n
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	writeJSON(w, snap)
}
