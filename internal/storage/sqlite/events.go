package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		id, ev.Day, string(ev.Kind), formatTime(ev.Timestamp),
		ev.Reason, ev.Source, formatTime(createdAt),
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
		WHERE day = ?
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
		WHERE day >= ? AND day <= ?
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
		var kind, timestampStr, createdAtStr string
		if err := rows.Scan(&ev.ID, &ev.Day, &kind, &timestampStr, &ev.Reason, &ev.Source, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Kind = models.EventKind(kind)

		var err error
		if ev.Timestamp, err = time.Parse(time.RFC3339, timestampStr); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp of event %s: %w", ev.ID, err)
		}
		if ev.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of event %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// formatTime stores instants as fixed-width UTC RFC 3339 so that text
// ordering matches chronological ordering.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
