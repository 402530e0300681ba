package logging

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dkhalife/sufra/internal/store"
)

func setupLogDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			user_id INTEGER,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed to create events table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEventLogHandler_WarnWrittenToDB(t *testing.T) {
	db := setupLogDB(t)
	var buf bytes.Buffer

	handler := NewEventLogHandler(slog.NewTextHandler(&buf, nil), db)
	logger := slog.New(handler)

	logger.Warn("login rate limit exceeded", "ip", "10.0.0.1")

	// Written to the inner handler
	if !bytes.Contains(buf.Bytes(), []byte("login rate limit exceeded")) {
		t.Error("inner handler did not receive the record")
	}

	// And to the event log
	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Level != "warning" {
		t.Errorf("Level = %q, want warning", events[0].Level)
	}
	if events[0].Category != "auth" {
		t.Errorf("Category = %q, want auth", events[0].Category)
	}
}

func TestEventLogHandler_InfoNotWrittenToDB(t *testing.T) {
	db := setupLogDB(t)
	var buf bytes.Buffer

	handler := NewEventLogHandler(slog.NewTextHandler(&buf, nil), db)
	logger := slog.New(handler)

	logger.Info("server started", "addr", ":8080")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0 (info is below threshold)", len(events))
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := setupLogDB(t)
	var buf bytes.Buffer

	handler := NewEventLogHandler(slog.NewTextHandler(&buf, nil), db)
	logger := slog.New(handler)

	logger.Error("upload failed", "category", "meal", "name", "Falafel")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Category != "meal" {
		t.Errorf("Category = %q, want meal", events[0].Category)
	}
	if events[0].Level != "error" {
		t.Errorf("Level = %q, want error", events[0].Level)
	}
}

func TestExtractCategory_Inference(t *testing.T) {
	h := &EventLogHandler{}

	tests := []struct {
		message string
		want    string
	}{
		{"login failed", "auth"},
		{"meal deleted", "meal"},
		{"comment rejected", "comment"},
		{"user password rehashed", "user"},
		{"disk nearly full", "system"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r := slog.NewRecord(time.Time{}, slog.LevelWarn, tt.message, 0)
			if got := h.extractCategory(r); got != tt.want {
				t.Errorf("extractCategory(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestEscapeJSON(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`plain`, `plain`},
		{`with "quotes"`, `with \"quotes\"`},
		{"line\nbreak", `line\nbreak`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeJSON(tt.input); got != tt.want {
			t.Errorf("escapeJSON(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
