package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// appendRetry bounds how long an event append waits out lock contention
// beyond what busy_timeout already absorbs.
type appendRetry struct {
	attempts int
	base     time.Duration
	ceiling  time.Duration
}

var defaultAppendRetry = appendRetry{
	attempts: 4,
	base:     50 * time.Millisecond,
	ceiling:  500 * time.Millisecond,
}

// isTransientSQLiteErr reports lock contention that clears on retry:
// SQLITE_BUSY, SQLITE_LOCKED (any extended code) and the WAL short read.
func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		switch {
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return true
		case code == sqlite3.SQLITE_IOERR_SHORT_READ:
			return true
		}
		return false
	}

	// Errors that lost their type crossing a driver boundary.
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// do runs fn until it succeeds, fails with a non-transient error, runs
// out of attempts, or ctx is done.
func (r appendRetry) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !isTransientSQLiteErr(err) || attempt >= r.attempts {
			return err
		}

		backoff := r.backoff(attempt)
		log.Printf("op=%s attempt=%d backoff=%s err=%v", op, attempt, backoff, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (after %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// backoff doubles from base up to ceiling, plus up to base of jitter.
func (r appendRetry) backoff(attempt int) time.Duration {
	d := r.base << (attempt - 1)
	if d <= 0 || d > r.ceiling {
		d = r.ceiling
	}
	if r.base > 0 {
		d += rand.N(r.base)
	}
	return d
}
