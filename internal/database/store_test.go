package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/carydes/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "audit.db"), nil)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db, nil) })

	return database.NewStore(db, nil)
}

func TestNewDB_RejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := database.NewDB("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNewDB_MigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.db")
	for i := range 2 {
		db, err := database.NewDB(path, nil)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		database.CloseDB(db, nil)
	}
}

func TestSaveAndGetAuditEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	entries := []database.AuditEntry{
		{UserID: 1, Role: "user", Message: "hello", LoggedAt: base},
		{UserID: 1, Role: "assistant", Message: "hi there", LoggedAt: base.Add(time.Second)},
		{UserID: 2, Role: "user", Message: "other user", LoggedAt: base.Add(2 * time.Second)},
		{UserID: 1, Role: "system", Message: "--- NEW SESSION STARTED ---", LoggedAt: base.Add(3 * time.Second)},
	}
	for i := range entries {
		if err := store.SaveAuditEntry(ctx, &entries[i]); err != nil {
			t.Fatalf("SaveAuditEntry %d failed: %v", i, err)
		}
		if entries[i].ID == 0 {
			t.Errorf("entry %d did not get an ID", i)
		}
	}

	got, err := store.GetAuditEntries(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetAuditEntries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Message != "hi there" || got[1].Role != "system" {
		t.Errorf("unexpected entries: %+v", got)
	}
	if !got[0].LoggedAt.Equal(base.Add(time.Second)) {
		t.Errorf("logged_at round trip mismatch: %v", got[0].LoggedAt)
	}

	none, err := store.GetAuditEntries(ctx, 1, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no entries for zero limit, got %v, %v", none, err)
	}
}

func TestSaveAuditEntry_Validation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry *database.AuditEntry
	}{
		{name: "nil entry", entry: nil},
		{name: "missing role", entry: &database.AuditEntry{UserID: 1, Message: "x", LoggedAt: time.Now()}},
		{name: "missing time", entry: &database.AuditEntry{UserID: 1, Role: "user", Message: "x"}},
		{name: "unknown role", entry: &database.AuditEntry{UserID: 1, Role: "bot", Message: "x", LoggedAt: time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveAuditEntry(ctx, tt.entry); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDeleteAuditEntriesBefore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for day := range 5 {
		entry := &database.AuditEntry{
			UserID:   7,
			Role:     "user",
			Message:  "msg",
			LoggedAt: base.AddDate(0, 0, day),
		}
		if err := store.SaveAuditEntry(ctx, entry); err != nil {
			t.Fatalf("SaveAuditEntry failed: %v", err)
		}
	}

	n, err := store.DeleteAuditEntriesBefore(ctx, base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("DeleteAuditEntriesBefore failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", n)
	}

	left, err := store.GetAuditEntries(ctx, 7, 10)
	if err != nil {
		t.Fatalf("GetAuditEntries failed: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected 2 remaining entries, got %d", len(left))
	}
}

func TestPingAndMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := store.RunSQLMaintenance(ctx); err != nil {
		t.Fatalf("RunSQLMaintenance failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.RunSQLMaintenance(cancelled); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "audit.db", expected: "audit.db"},
		{input: "file:audit.db", expected: "audit.db"},
		{input: "file:data/audit.db?_pragma=busy_timeout(5000)", expected: "data/audit.db"},
		{input: "my%20audit.db", expected: "my audit.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := database.ExtractDBNameFromPath(tt.input); got != tt.expected {
				t.Errorf("ExtractDBNameFromPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
