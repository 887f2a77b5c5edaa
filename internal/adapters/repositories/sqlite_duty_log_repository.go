package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite-backed implementation of the DutyLogRepository port.
type SqliteDutyLogRepository struct{ DB *sql.DB }

func NewSqliteDutyLogRepository(db *sql.DB) *SqliteDutyLogRepository {
	return &SqliteDutyLogRepository{DB: db}
}

func (s *SqliteDutyLogRepository) AppendEvent(ctx context.Context, ev domain.LogEvent) (err error) {
	defer obs.Time(ctx, "sqlite.AppendEvent")(&err)

	if s.DB == nil {
		return errors.New("sqlite duty log repository: DB is nil")
	}
	if ev.Seq <= 0 {
		return fmt.Errorf("append event driver=%q: seq must be positive, got %d", ev.DriverID, ev.Seq)
	}

	query := `
	INSERT INTO duty_events (
		driver_id, seq, kind, interval_id, target_id, status,
		at, end_at, location, notes, recorded_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	var target, end any
	if ev.TargetID != nil {
		target = ev.TargetID.String()
	}
	if ev.End != nil {
		end = formatTime(*ev.End)
	}

	err = defaultAppendRetry.do(ctx, "sqlite.AppendEvent", func() error {
		_, err := s.DB.ExecContext(ctx, query,
			ev.DriverID, ev.Seq, string(ev.Kind), idString(ev.IntervalID), target, string(ev.Status),
			formatTime(ev.At), end, ev.Location, ev.Notes, formatTime(ev.RecordedAt),
		)
		return err
	})
	if isSqliteUniqueViolation(err) {
		return fmt.Errorf("append event driver=%q seq=%d: %w", ev.DriverID, ev.Seq, domain.ErrConcurrentAppend)
	}
	if err != nil {
		return fmt.Errorf("append event driver=%q seq=%d: %w", ev.DriverID, ev.Seq, err)
	}

	return nil
}

func (s *SqliteDutyLogRepository) ListEvents(ctx context.Context, driverID string) (_ []domain.LogEvent, err error) {
	defer obs.Time(ctx, "sqlite.ListEvents")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite duty log repository: DB is nil")
	}

	query := `
	SELECT
		seq, kind, interval_id, target_id, status,
		at, end_at, location, notes, recorded_at
	FROM duty_events
	WHERE driver_id = ?
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("list events driver=%q: query duty_events table: %w", driverID, err)
	}
	defer rows.Close()

	events := make([]domain.LogEvent, 0, 64)
	for rows.Next() {
		var (
			ev                       domain.LogEvent
			kind, intervalID, status string
			at, recordedAt           string
			target, end              sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &kind, &intervalID, &target, &status, &at, &end, &ev.Location, &ev.Notes, &recordedAt); err != nil {
			return nil, fmt.Errorf("list events driver=%q: scan row: %w", driverID, err)
		}

		ev.DriverID = driverID
		ev.Kind = domain.EventKind(kind)
		ev.Status = domain.DutyStatus(status)
		if ev.IntervalID, err = parseID(intervalID); err != nil {
			return nil, fmt.Errorf("list events driver=%q seq=%d: interval id: %w", driverID, ev.Seq, err)
		}
		if target.Valid {
			id, err := uuid.Parse(target.String)
			if err != nil {
				return nil, fmt.Errorf("list events driver=%q seq=%d: target id: %w", driverID, ev.Seq, err)
			}
			ev.TargetID = &id
		}
		if ev.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("list events driver=%q seq=%d: at: %w", driverID, ev.Seq, err)
		}
		if end.Valid {
			t, err := parseTime(end.String)
			if err != nil {
				return nil, fmt.Errorf("list events driver=%q seq=%d: end: %w", driverID, ev.Seq, err)
			}
			ev.End = &t
		}
		if ev.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("list events driver=%q seq=%d: recorded at: %w", driverID, ev.Seq, err)
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events driver=%q: row iteration: %w", driverID, err)
	}

	return events, nil
}

func (s *SqliteDutyLogRepository) ListDrivers(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "sqlite.ListDrivers")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite duty log repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT driver_id FROM duty_events ORDER BY driver_id;`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query duty_events table: %w", err)
	}
	defer rows.Close()

	return scanDriverIDs(rows)
}

func scanDriverIDs(rows *sql.Rows) ([]string, error) {
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}
	return ids, nil
}

func isSqliteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Times are stored as UTC RFC 3339 text so they sort lexically.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func parseID(v string) (uuid.UUID, error) {
	if v == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(v)
}
