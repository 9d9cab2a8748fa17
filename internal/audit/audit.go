// Package audit records every user message, assistant reply and session
// marker. Recording never fails from the caller's point of view: sink errors
// are logged and dropped.
package audit

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/edgard/carydes/internal/sanitize"
)

// Role identifies the author of an audit entry.
type Role string

// Audit roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// SessionMarker is recorded when a user starts a new conversation.
const SessionMarker = "--- NEW SESSION STARTED ---"

// Entry is one audit record. Message is already escaped to a single line.
type Entry struct {
	Time    time.Time
	UserID  int64
	Role    Role
	Message string
}

// Sink persists audit entries.
type Sink interface {
	Name() string
	Write(ctx context.Context, entry Entry) error
	// Prune removes entries older than before and reports how many records
	// (files or rows) were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Logger fans entries out to its sinks.
type Logger struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Logger writing to sinks.
func New(logger *slog.Logger, sinks ...Sink) *Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Logger{
		sinks:  sinks,
		logger: logger.With("component", "audit"),
		now:    time.Now,
	}
}

// Record writes one entry to every sink.
func (l *Logger) Record(ctx context.Context, userID int64, role Role, message string) {
	entry := Entry{
		Time:    l.now(),
		UserID:  userID,
		Role:    role,
		Message: sanitize.ForLog(message),
	}

	for _, sink := range l.sinks {
		if err := sink.Write(ctx, entry); err != nil {
			l.logger.ErrorContext(ctx, "Failed to write audit entry",
				"sink", sink.Name(), "user_id", userID, "role", role, "error", err)
		}
	}
}

// Prune asks every sink to drop entries older than before. Errors are logged
// per sink; the total number of removed records is returned.
func (l *Logger) Prune(ctx context.Context, before time.Time) int64 {
	var total int64
	for _, sink := range l.sinks {
		n, err := sink.Prune(ctx, before)
		if err != nil {
			l.logger.ErrorContext(ctx, "Failed to prune audit sink", "sink", sink.Name(), "error", err)
		}
		total += n
	}
	return total
}
