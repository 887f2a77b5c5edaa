package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// Postgres-backed implementation of the DutyLogRepository port.
// It expects the pgx stdlib driver behind *sql.DB.
type PostgresDutyLogRepository struct{ DB *sql.DB }

func NewPostgresDutyLogRepository(db *sql.DB) *PostgresDutyLogRepository {
	return &PostgresDutyLogRepository{DB: db}
}

func (p *PostgresDutyLogRepository) AppendEvent(ctx context.Context, ev domain.LogEvent) (err error) {
	defer obs.Time(ctx, "postgres.AppendEvent")(&err)

	if p.DB == nil {
		return errors.New("postgres duty log repository: DB is nil")
	}
	if ev.Seq <= 0 {
		return fmt.Errorf("append event driver=%q: seq must be positive, got %d", ev.DriverID, ev.Seq)
	}

	query := `
	INSERT INTO duty_events (
		driver_id, seq, kind, interval_id, target_id, status,
		at, end_at, location, notes, recorded_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	_, err = p.DB.ExecContext(ctx, query,
		ev.DriverID, ev.Seq, string(ev.Kind), nullID(&ev.IntervalID), nullID(ev.TargetID), string(ev.Status),
		nullTime(&ev.At), nullTime(ev.End), ev.Location, ev.Notes, ev.RecordedAt.UTC(),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("append event driver=%q seq=%d: %w", ev.DriverID, ev.Seq, domain.ErrConcurrentAppend)
	}
	if err != nil {
		return fmt.Errorf("append event driver=%q seq=%d: %w", ev.DriverID, ev.Seq, err)
	}

	return nil
}

func (p *PostgresDutyLogRepository) ListEvents(ctx context.Context, driverID string) (_ []domain.LogEvent, err error) {
	defer obs.Time(ctx, "postgres.ListEvents")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres duty log repository: DB is nil")
	}

	query := `
	SELECT
		seq, kind, interval_id, target_id, status,
		at, end_at, location, notes, recorded_at
	FROM duty_events
	WHERE driver_id = $1
	ORDER BY seq;
	`
	rows, err := p.DB.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("list events driver=%q: query duty_events table: %w", driverID, err)
	}
	defer rows.Close()

	events := make([]domain.LogEvent, 0, 64)
	for rows.Next() {
		var (
			ev                 domain.LogEvent
			kind, status       string
			intervalID, target sql.NullString
			at, end            sql.NullTime
		)
		if err := rows.Scan(&ev.Seq, &kind, &intervalID, &target, &status, &at, &end, &ev.Location, &ev.Notes, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("list events driver=%q: scan row: %w", driverID, err)
		}

		ev.DriverID = driverID
		ev.Kind = domain.EventKind(kind)
		ev.Status = domain.DutyStatus(status)
		ev.RecordedAt = ev.RecordedAt.UTC()
		if intervalID.Valid {
			if ev.IntervalID, err = uuid.Parse(intervalID.String); err != nil {
				return nil, fmt.Errorf("list events driver=%q seq=%d: interval id: %w", driverID, ev.Seq, err)
			}
		}
		if target.Valid {
			id, err := uuid.Parse(target.String)
			if err != nil {
				return nil, fmt.Errorf("list events driver=%q seq=%d: target id: %w", driverID, ev.Seq, err)
			}
			ev.TargetID = &id
		}
		if at.Valid {
			ev.At = at.Time.UTC()
		}
		if end.Valid {
			t := end.Time.UTC()
			ev.End = &t
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events driver=%q: row iteration: %w", driverID, err)
	}

	return events, nil
}

func (p *PostgresDutyLogRepository) ListDrivers(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "postgres.ListDrivers")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres duty log repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `SELECT DISTINCT driver_id FROM duty_events ORDER BY driver_id;`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query duty_events table: %w", err)
	}
	defer rows.Close()

	return scanDriverIDs(rows)
}

func nullID(id *uuid.UUID) any {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id.String()
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
