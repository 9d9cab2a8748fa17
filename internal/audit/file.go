package audit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	stampLayout = "2006-01-02 15:04:05"
	dayFileExt  = ".txt"
)

// FileSink appends entries to <dir>/<user digits>/<YYYY-MM-DD>.txt.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

// NewFileSink returns a sink rooted at dir. The directory is created lazily.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Name implements Sink.
func (s *FileSink) Name() string { return "file" }

// Path returns the day file an entry for userID at t is written to.
func (s *FileSink) Path(userID int64, t time.Time) (string, error) {
	return filepath.Join(s.dir, userDirName(userID), t.Format(dayLayout)+dayFileExt), nil
}

// Write implements Sink.
func (s *FileSink) Write(_ context.Context, entry Entry) error {
	path, err := s.Path(entry.UserID, entry.Time)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("[%s] [%s] %s\n", entry.Time.Format(stampLayout), entry.Role, entry.Message)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write audit file: %w", err)
	}

	return f.Close()
}

// Prune removes day files whose date is before the day of before.
func (s *FileSink) Prune(ctx context.Context, before time.Time) (int64, error) {
	cutoff := before.Format(dayLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.dir {
				return fs.SkipAll
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		day, ok := strings.CutSuffix(d.Name(), dayFileExt)
		if !ok {
			return nil
		}
		if _, perr := time.Parse(dayLayout, day); perr != nil {
			return nil
		}
		// Same layout, so lexical order is chronological.
		if day >= cutoff {
			return nil
		}

		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
		return nil
	})

	return removed, err
}

// userDirName maps a user id to its directory under the audit root. Negative
// ids (group chats) get an "n" prefix so -42 and 42 never share a directory.
func userDirName(userID int64) string {
	id := strconv.FormatInt(userID, 10)
	if digits, negative := strings.CutPrefix(id, "-"); negative {
		return "n" + digits
	}
	return id
}
