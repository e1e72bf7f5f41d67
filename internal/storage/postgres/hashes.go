package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/timeledger/internal/models"
)

func (s *Store) RecordReportHash(ctx context.Context, rec models.ReportHash) (string, error) {
	id := uuid.New().String()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_hashes (id, day, filename, sha256, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, rec.Day, rec.Filename, rec.SHA256, createdAt.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert report hash: %w", err)
	}
	return id, nil
}

func (s *Store) ListReportHashes(ctx context.Context, day string) ([]models.ReportHash, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day, filename, sha256, created_at
		FROM report_hashes
		WHERE day = $1
		ORDER BY seq ASC
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query report hashes: %w", err)
	}
	defer rows.Close()

	var records []models.ReportHash
	for rows.Next() {
		var rec models.ReportHash
		if err := rows.Scan(&rec.ID, &rec.Day, &rec.Filename, &rec.SHA256, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report hash: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
