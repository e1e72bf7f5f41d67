package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/julianstephens/timeledger/internal/models"
)

func (s *Store) RecordReportHash(ctx context.Context, rec models.ReportHash) (string, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := hashDoc{
		Day:       rec.Day,
		Filename:  rec.Filename,
		SHA256:    rec.SHA256,
		CreatedAt: createdAt.UTC(),
	}

	id := uuid.New().String()
	if _, err := s.hashesCol().Doc(id).Create(ctx, doc); err != nil {
		return "", wrap("RecordReportHash", err)
	}
	return id, nil
}

func (s *Store) ListReportHashes(ctx context.Context, day string) ([]models.ReportHash, error) {
	iter := s.hashesCol().
		Where("day", "==", day).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []models.ReportHash
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, wrap("ListReportHashes", err)
		}
		var doc hashDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, wrap("ListReportHashes decode", err)
		}
		out = append(out, models.ReportHash{
			ID:        snap.Ref.ID,
			Day:       doc.Day,
			Filename:  doc.Filename,
			SHA256:    doc.SHA256,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	return out, nil
}
