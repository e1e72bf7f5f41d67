package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/julianstephens/timeledger/internal/models"
)

// Scheme prefixes a database setting that selects this backend, e.g.
// firestore://my-gcp-project.
const Scheme = "firestore://"

const (
	eventsCollection = "timeledger_events"
	hashesCollection = "timeledger_report_hashes"
)

// Store keeps the event log as documents in Cloud Firestore. It honors
// FIRESTORE_EMULATOR_HOST through the client library.
type Store struct {
	projectID string
	client    *firestore.Client
}

// ParseDSN extracts the project ID from a firestore:// database setting.
func ParseDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, Scheme) {
		return "", fmt.Errorf("not a firestore database: %q", dsn)
	}
	project := strings.Trim(strings.TrimPrefix(dsn, Scheme), "/")
	if project == "" {
		return "", errors.New("projectID is required for Firestore store")
	}
	return project, nil
}

func NewStore(projectID string) *Store {
	return &Store{projectID: projectID}
}

func (s *Store) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	if s.projectID == "" {
		return errors.New("projectID is required for Firestore store")
	}
	client, err := firestore.NewClient(ctx, s.projectID)
	if err != nil {
		return fmt.Errorf("creating firestore client: %w", err)
	}
	s.client = client
	return nil
}

func (s *Store) Init() error {
	ctx := context.Background()
	if err := s.connect(ctx); err != nil {
		return err
	}
	return s.Ping(ctx)
}

func (s *Store) Load() error {
	return s.connect(context.Background())
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// Migrate is a no-op: collections are schemaless.
func (s *Store) Migrate(context.Context, func(string)) (int, error) { return 0, nil }

func (s *Store) SchemaVersion() (int, int, error) { return 0, 0, nil }

func (s *Store) Ping(ctx context.Context) error {
	iter := s.eventsCol().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return Scheme + s.projectID
}

func (s *Store) eventsCol() *firestore.CollectionRef {
	return s.client.Collection(eventsCollection)
}

func (s *Store) hashesCol() *firestore.CollectionRef {
	return s.client.Collection(hashesCollection)
}

type eventDoc struct {
	Day       string    `firestore:"day"`
	Kind      string    `firestore:"kind"`
	Timestamp time.Time `firestore:"timestamp"`
	Reason    string    `firestore:"reason"`
	Source    string    `firestore:"source"`
	CreatedAt time.Time `firestore:"created_at"`
}

type hashDoc struct {
	Day       string    `firestore:"day"`
	Filename  string    `firestore:"filename"`
	SHA256    string    `firestore:"sha256"`
	CreatedAt time.Time `firestore:"created_at"`
}

func toEventDoc(ev models.Event, now time.Time) eventDoc {
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return eventDoc{
		Day:       ev.Day,
		Kind:      string(ev.Kind),
		Timestamp: ev.Timestamp.UTC().Truncate(time.Second),
		Reason:    ev.Reason,
		Source:    ev.Source,
		CreatedAt: createdAt.UTC(),
	}
}

func (d eventDoc) event(id string) models.Event {
	return models.Event{
		ID:        id,
		Day:       d.Day,
		Kind:      models.EventKind(d.Kind),
		Timestamp: d.Timestamp.UTC(),
		Reason:    d.Reason,
		Source:    d.Source,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// wrap adds a hint for the composite index the ordered queries need.
func wrap(op string, err error) error {
	if status.Code(err) == codes.FailedPrecondition {
		return fmt.Errorf("firestore %s: %w (hint: create the composite index suggested in the error)", op, err)
	}
	return fmt.Errorf("firestore %s: %w", op, err)
}
