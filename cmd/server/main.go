package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "rollcall/internal/adapters/email"
	web "rollcall/internal/adapters/http"
	"rollcall/internal/adapters/http/perf"
	"rollcall/internal/adapters/storage"
	attendanceStore "rollcall/internal/adapters/storage/attendance"
	"rollcall/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Environment overrides .env; absence of the file is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not read .env: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)

	tracker, dbClose := openTracker(collector)
	if dbClose != nil {
		defer dbClose()
	}

	stores := &web.Stores{Tracker: tracker}

	// Email digest: noop sender unless a Resend key is configured
	var sender emailPkg.Sender
	if apiKey := os.Getenv("ROLLCALL_RESEND_API_KEY"); apiKey != "" {
		from := envOrDefault("ROLLCALL_DIGEST_FROM", "Rollcall <noreply@rollcall.local>")
		sender = emailPkg.NewResendSender(apiKey, from)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		log.Println("Email sender configured (noop, set ROLLCALL_RESEND_API_KEY for real delivery)")
	}

	// Digest worker runs only when recipients are configured
	if to := os.Getenv("ROLLCALL_DIGEST_TO"); to != "" {
		every, err := time.ParseDuration(envOrDefault("ROLLCALL_DIGEST_EVERY", "24h"))
		if err != nil {
			log.Fatalf("invalid ROLLCALL_DIGEST_EVERY: %v", err)
		}
		input := orchestrators.SendDigestInput{
			To:   splitRecipients(to),
			From: envOrDefault("ROLLCALL_DIGEST_FROM", "Rollcall <noreply@rollcall.local>"),
		}
		deps := orchestrators.SendDigestDeps{Store: tracker, Sender: sender}
		digestStopCh := make(chan struct{})
		orchestrators.StartDigestWorker(input, deps, every, digestStopCh)
		defer close(digestStopCh)
		log.Printf("Digest worker started (every %s to %v)", every, input.To)
	}

	// Create HTTP handler with middleware (pass collector for timing + snapshot)
	mux := web.NewMux("static", stores, collector)

	addr := envOrDefault("ROLLCALL_ADDR", ":8080")
	log.Printf("Rollcall %s starting on %s (env=%s, storage=%s)", version, addr,
		envOrDefault("ROLLCALL_ENV", "development"), envOrDefault("ROLLCALL_STORAGE", "json"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// openTracker builds the attendance store selected by ROLLCALL_STORAGE.
// The returned close func is non-nil only for the sqlite backend.
func openTracker(collector *perf.Collector) (attendanceStore.Store, func() error) {
	switch backend := envOrDefault("ROLLCALL_STORAGE", "json"); backend {
	case "json":
		dataFile := envOrDefault("ROLLCALL_DATA_FILE", "attendance.json")
		store, err := attendanceStore.NewJSONFileStore(dataFile)
		if err != nil {
			log.Fatalf("failed to load attendance data: %v", err)
		}
		log.Printf("Attendance data loaded from %s", dataFile)
		return store, nil

	case "sqlite":
		dbPath := envOrDefault("ROLLCALL_DB_PATH", "rollcall.db")
		dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}

		// Connection pool settings for WAL mode
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)

		if err := db.Ping(); err != nil {
			log.Fatalf("database unreachable: %v", err)
		}
		if err := storage.InitDB(db); err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		log.Printf("Database initialized at %s", dbPath)

		timedDB := storage.NewTimedDB(db, collector)
		return attendanceStore.NewSQLiteStore(timedDB), db.Close

	default:
		log.Fatalf("unknown ROLLCALL_STORAGE %q (want json or sqlite)", backend)
		return nil, nil
	}
}

// splitRecipients parses a comma-separated address list, dropping empties.
func splitRecipients(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
