package audit

import (
	"context"
	"time"

	"github.com/edgard/carydes/internal/database"
)

// DBSink mirrors entries into the audit database.
type DBSink struct {
	store database.Store
}

// NewDBSink returns a sink writing through store.
func NewDBSink(store database.Store) *DBSink {
	return &DBSink{store: store}
}

// Name implements Sink.
func (s *DBSink) Name() string { return "database" }

// Write implements Sink.
func (s *DBSink) Write(ctx context.Context, entry Entry) error {
	return s.store.SaveAuditEntry(ctx, &database.AuditEntry{
		UserID:   entry.UserID,
		Role:     string(entry.Role),
		Message:  entry.Message,
		LoggedAt: entry.Time,
	})
}

// Prune implements Sink.
func (s *DBSink) Prune(ctx context.Context, before time.Time) (int64, error) {
	return s.store.DeleteAuditEntriesBefore(ctx, before)
}
