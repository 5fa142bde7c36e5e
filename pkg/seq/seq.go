// Package seq keeps the sequence number of published discovery documents.
package seq

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	// DefaultLockTimeout is how long Advance waits for another run to finish.
	DefaultLockTimeout = 30 * time.Second

	lockRetryDelay = 100 * time.Millisecond
)

// LockError reports that the counter lock could not be taken.
type LockError struct {
	Path string
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("lock sequence counter %s: %v", e.Path, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

// ErrLockTimeout is wrapped in a LockError when the lock is held too long by someone else.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Counter is a sequence number persisted as a decimal line in a text file.
// The file itself carries the advisory lock, so it is rewritten in place.
type Counter struct {
	path        string
	lockTimeout time.Duration
}

// Option configures a Counter.
type Option func(*Counter)

// WithLockTimeout sets how long Advance waits for the lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Counter) {
		c.lockTimeout = d
	}
}

// New returns a counter stored at path.
func New(path string, opts ...Option) *Counter {
	c := &Counter{path: path, lockTimeout: DefaultLockTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the counter file.
func (c *Counter) Path() string {
	return c.path
}

// Current reads the counter without locking. A missing or empty file reads as 0.
func (c *Counter) Current() (int, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sequence counter: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (int, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("sequence counter holds %q, want a non-negative integer", text)
	}
	return n, nil
}

// Advance locks the counter, reads the current value and calls fn with it and
// the candidate next value. When fn returns true the counter is set to next
// and flushed before the lock is released. Advance returns the value the
// counter holds afterwards.
func (c *Counter) Advance(ctx context.Context, fn func(current, next int) (bool, error)) (int, error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return 0, fmt.Errorf("create counter directory: %w", err)
	}

	lock := flock.New(c.path)
	lockCtx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = ErrLockTimeout
		}
		return 0, &LockError{Path: c.path, Err: err}
	}
	if !locked {
		return 0, &LockError{Path: c.path, Err: ErrLockTimeout}
	}
	defer lock.Unlock()

	current, err := c.Current()
	if err != nil {
		return 0, err
	}
	next := current + 1

	advance, err := fn(current, next)
	if err != nil {
		return current, err
	}
	if !advance {
		return current, nil
	}
	if err := c.write(next); err != nil {
		return current, err
	}
	return next, nil
}

// write truncates and rewrites the file, keeping the inode that holds the lock.
func (c *Counter) write(n int) error {
	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open sequence counter: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", n); err != nil {
		f.Close()
		return fmt.Errorf("write sequence counter: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync sequence counter: %w", err)
	}
	return f.Close()
}
