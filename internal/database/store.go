package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the database operations used by the audit mirror.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveAuditEntry inserts one audit entry.
	SaveAuditEntry(ctx context.Context, entry *AuditEntry) error

	// GetAuditEntries returns up to limit most recent entries of a user, oldest first.
	GetAuditEntries(ctx context.Context, userID int64, limit int) ([]AuditEntry, error)

	// DeleteAuditEntriesBefore removes entries logged before the cutoff and
	// returns how many rows were deleted.
	DeleteAuditEntriesBefore(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveAuditEntry(ctx context.Context, entry *AuditEntry) error {
	if entry == nil {
		return errors.New("cannot save nil audit entry")
	}
	if entry.Role == "" {
		return errors.New("audit entry must have a role")
	}
	if entry.LoggedAt.IsZero() {
		return errors.New("audit entry must have a non-zero logged_at")
	}

	entry.CreatedAt = time.Now().UTC()
	entry.LoggedAt = entry.LoggedAt.UTC()

	query := `INSERT INTO audit_entries (created_at, user_id, role, message, logged_at)
		VALUES (:created_at, :user_id, :role, :message, :logged_at)`

	result, err := s.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert audit entry", "user_id", entry.UserID, "role", entry.Role, "error", err)
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = uint(id)
	}

	return nil
}

func (s *sqlxStore) GetAuditEntries(ctx context.Context, userID int64, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		return []AuditEntry{}, nil
	}

	var entries []AuditEntry
	query := `SELECT id, created_at, user_id, role, message, logged_at FROM (
			SELECT * FROM audit_entries WHERE user_id = ? ORDER BY logged_at DESC, id DESC LIMIT ?
		) ORDER BY logged_at ASC, id ASC`

	if err := s.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get audit entries for user %d: %w", userID, err)
	}

	return entries, nil
}

func (s *sqlxStore) DeleteAuditEntriesBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE logged_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted audit entries: %w", err)
	}

	s.logger.DebugContext(ctx, "Deleted old audit entries", "count", n, "before", before)
	return n, nil
}

// RunSQLMaintenance executes VACUUM. It must run outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context done before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to execute VACUUM", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
