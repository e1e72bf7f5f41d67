package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/timeledger/internal/models"
)

const eventColumns = `id, day, kind, timestamp, reason, source, created_at`

func (s *Store) Append(ctx context.Context, ev models.Event) (string, error) {
	id := uuid.New().String()
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		id, ev.Day, string(ev.Kind), ev.Timestamp.UTC().Truncate(time.Second),
		ev.Reason, ev.Source, createdAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (s *Store) ListForDay(ctx context.Context, day string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE day = $1
		ORDER BY timestamp ASC, seq ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return scanEvents(rows)
}

func (s *Store) ListForRange(ctx context.Context, startDay, endDay string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE day BETWEEN $1 AND $2
		ORDER BY day ASC, timestamp ASC, seq ASC
	`, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return scanEvents(rows)
}

func (s *Store) ListDays(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT day FROM events ORDER BY day ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		var kind string
		if err := rows.Scan(&ev.ID, &ev.Day, &kind, &ev.Timestamp, &ev.Reason, &ev.Source, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Kind = models.EventKind(kind)
		ev.Timestamp = ev.Timestamp.UTC()
		ev.CreatedAt = ev.CreatedAt.UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
