package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/julianstephens/timeledger/internal/models"
)

// Append creates a new document; Create fails rather than overwrite.
func (s *Store) Append(ctx context.Context, ev models.Event) (string, error) {
	id := uuid.New().String()
	if _, err := s.eventsCol().Doc(id).Create(ctx, toEventDoc(ev, time.Now())); err != nil {
		return "", wrap("Append", err)
	}
	return id, nil
}

func (s *Store) ListForDay(ctx context.Context, day string) ([]models.Event, error) {
	q := s.eventsCol().
		Where("day", "==", day).
		OrderBy("timestamp", firestore.Asc).
		OrderBy("created_at", firestore.Asc)
	return s.collect(ctx, "ListForDay", q)
}

func (s *Store) ListForRange(ctx context.Context, startDay, endDay string) ([]models.Event, error) {
	q := s.eventsCol().
		Where("day", ">=", startDay).
		Where("day", "<=", endDay).
		OrderBy("day", firestore.Asc).
		OrderBy("timestamp", firestore.Asc).
		OrderBy("created_at", firestore.Asc)
	return s.collect(ctx, "ListForRange", q)
}

func (s *Store) ListDays(ctx context.Context) ([]string, error) {
	iter := s.eventsCol().Select("day").OrderBy("day", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var days []string
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, wrap("ListDays", err)
		}
		v, err := snap.DataAt("day")
		if err != nil {
			return nil, wrap("ListDays decode", err)
		}
		if day, ok := v.(string); ok {
			days = appendDistinct(days, day)
		}
	}
	return days, nil
}

func (s *Store) collect(ctx context.Context, op string, q firestore.Query) ([]models.Event, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Event
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, wrap(op, err)
		}

		var doc eventDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, wrap(op+" decode", err)
		}
		out = append(out, doc.event(snap.Ref.ID))
	}
	return out, nil
}

// appendDistinct appends day unless it repeats the last element of the
// sorted slice.
func appendDistinct(days []string, day string) []string {
	if n := len(days); n > 0 && days[n-1] == day {
		return days
	}
	return append(days, day)
}
