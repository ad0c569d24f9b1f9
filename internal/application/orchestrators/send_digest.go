package orchestrators

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"strings"
	"time"

	"rollcall/internal/adapters/email"
	"rollcall/internal/domain/attendance"
)

// DigestStore defines the store interface needed to build the digest.
type DigestStore interface {
	ListStudents(ctx context.Context) ([]string, error)
	ListRecords(ctx context.Context) (map[string]map[string]string, error)
}

// SendDigestInput carries input for the digest orchestrator.
type SendDigestInput struct {
	To   []string
	From string
}

// SendDigestDeps holds dependencies for SendDigest.
type SendDigestDeps struct {
	Store  DigestStore
	Sender email.Sender
	Now    func() time.Time // nil means time.Now
}

var digestTemplate = template.Must(template.New("digest").Parse(`<h2>Attendance summary, {{.Date}}</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Student</th><th>Present</th><th>Classes</th><th>Rate</th></tr>
{{range .Rows}}<tr><td>{{.Name}}</td><td>{{.Present}}</td><td>{{.Total}}</td><td>{{.Percentage}}%</td></tr>
{{end}}</table>
`))

type digestRow struct {
	Name       string
	Present    int
	Total      int
	Percentage float64
}

// ExecuteSendDigest emails the current attendance summary to the configured
// recipients. One call, one send attempt; a failure is returned to the
// caller and never retried.
// PRE: input.To is non-empty
// POST: Exactly one email was handed to the sender, or an error is returned
func ExecuteSendDigest(ctx context.Context, input SendDigestInput, deps SendDigestDeps) error {
	if len(input.To) == 0 {
		return fmt.Errorf("digest has no recipients")
	}

	students, err := deps.Store.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}
	records, err := deps.Store.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	date := now().Format(attendance.DateFormat)

	summary := attendance.Summarize(students, records)
	rows := make([]digestRow, 0, len(summary))
	for name, s := range summary {
		rows = append(rows, digestRow{Name: name, Present: s.Present, Total: s.Total, Percentage: s.Percentage})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	var body strings.Builder
	if err := digestTemplate.Execute(&body, struct {
		Date string
		Rows []digestRow
	}{Date: date, Rows: rows}); err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	_, err = deps.Sender.Send(ctx, email.SendRequest{
		To:      input.To,
		From:    input.From,
		Subject: "Attendance summary " + date,
		HTML:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	slog.Info("digest_event", "event", "digest_sent", "recipients", len(input.To), "students", len(rows))
	return nil
}

// StartDigestWorker starts a background goroutine that emails the summary on
// an interval. Each tick is a single attempt; failures are logged and dropped.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartDigestWorker(input SendDigestInput, deps SendDigestDeps, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := ExecuteSendDigest(ctx, input, deps); err != nil {
					slog.Error("digest_send_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("digest_worker_stopped")
				return
			}
		}
	}()
}
