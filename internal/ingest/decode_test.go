package ingest

import (
	"testing"
	"time"

	"github.com/dotswift/Pulse/internal/model"
)

func TestDecodeMessageRecord(t *testing.T) {
	e := Decode(`{"id":"m1","ts":"2026-08-29T10:00:00Z","kind":"message","level":"WARN","message":"disk pressure","label":"api"}`, "stdin")
	if e.ID != "m1" || e.Kind != model.KindMessage {
		t.Fatalf("entity: %+v", e)
	}
	if e.Level != "warn" {
		t.Fatalf("level must be lowercased: %q", e.Level)
	}
	if e.Message != "disk pressure" || e.Label != "api" {
		t.Fatalf("fields: %+v", e)
	}
	want := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if !e.CreatedAt.Equal(want) {
		t.Fatalf("timestamp: %v", e.CreatedAt)
	}
}

func TestDecodeTaskRecord(t *testing.T) {
	e := Decode(`{"id":"t1","kind":"network","method":"get","url":"/api/users","status":404,"duration_ms":12.5,"failure":"not found"}`, "stdin")
	if e.Kind != model.KindTask {
		t.Fatalf("kind: %v", e.Kind)
	}
	if e.Method != "GET" {
		t.Fatalf("method must be uppercased: %q", e.Method)
	}
	if e.StatusCode != 404 || e.URL != "/api/users" || e.Failure != "not found" {
		t.Fatalf("fields: %+v", e)
	}
	if e.Duration != 12500*time.Microsecond {
		t.Fatalf("duration: %v", e.Duration)
	}
}

func TestDecodePendingTask(t *testing.T) {
	e := Decode(`{"id":"t2","kind":"task","method":"post","url":"/api/orders"}`, "stdin")
	if e.StatusCode != 0 {
		t.Fatalf("missing status must decode as pending, got %d", e.StatusCode)
	}
}

func TestDecodeNonJSONLineBecomesMessage(t *testing.T) {
	e := Decode("  plain text with trailing space  ", "app.log")
	if e.Kind != model.KindMessage || e.Message != "plain text with trailing space" {
		t.Fatalf("entity: %+v", e)
	}
	if e.ID == "" {
		t.Fatalf("decoder must assign an id")
	}
	if e.Label != "app.log" {
		t.Fatalf("label must fall back to the source: %q", e.Label)
	}
	if e.Level != "info" {
		t.Fatalf("level: %q", e.Level)
	}
}

func TestDecodeDefaults(t *testing.T) {
	e := Decode(`{"kind":"message"}`, "stdin")
	if e.ID == "" {
		t.Fatalf("id must be generated")
	}
	if e.Level != "info" {
		t.Fatalf("level default: %q", e.Level)
	}
	if e.CreatedAt.IsZero() {
		t.Fatalf("timestamp must default to now")
	}
}

func TestDecodeBadTimestampFallsBack(t *testing.T) {
	before := time.Now()
	e := Decode(`{"id":"x","kind":"message","message":"hi","ts":"not-a-time"}`, "stdin")
	if e.CreatedAt.Before(before) {
		t.Fatalf("unparseable ts must fall back to now: %v", e.CreatedAt)
	}
}
