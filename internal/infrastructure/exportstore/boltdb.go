package exportstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

var (
	metaBucket    = []byte("documents")
	contentBucket = []byte("content")
	createdBucket = []byte("created")
)

// Store keeps exported documents in BoltDB until they are downloaded or purged.
type Store struct {
	db *bolt.DB
}

var _ repository.ExportRepository = (*Store)(nil)

// Open initializes the BoltDB file and ensures the buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{metaBucket, contentBucket, createdBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, doc *domain.ExportedDocument) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	id := []byte(doc.ID)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(metaBucket).Put(id, meta); err != nil {
			return err
		}
		if err := tx.Bucket(contentBucket).Put(id, doc.Content); err != nil {
			return err
		}
		return tx.Bucket(createdBucket).Put(createdKey(doc.CreatedAt, doc.ID), id)
	})
}

func (s *Store) Get(ctx context.Context, id string) (*domain.ExportedDocument, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc domain.ExportedDocument
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket).Get([]byte(id))
		if meta == nil {
			return domain.ErrDocumentNotFound
		}
		if err := json.Unmarshal(meta, &doc); err != nil {
			return err
		}
		doc.Content = append([]byte(nil), tx.Bucket(contentBucket).Get([]byte(id))...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteBefore removes documents created before cutoff and reports how many
// were removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	limit := createdKey(cutoff, "")
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta, content := tx.Bucket(metaBucket), tx.Bucket(contentBucket)
		c := tx.Bucket(createdBucket).Cursor()
		for k, v := c.First(); k != nil && bytes.Compare(k, limit) < 0; k, v = c.First() {
			id := append([]byte(nil), v...)
			if err := meta.Delete(id); err != nil {
				return err
			}
			if err := content.Delete(id); err != nil {
				return err
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Size returns the number of stored documents.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(metaBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Ping verifies the database file is readable.
func (s *Store) Ping(context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(metaBucket) == nil {
			return fmt.Errorf("bucket %s missing", metaBucket)
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// createdKey orders documents by creation time. Times before the epoch sort
// first.
func createdKey(t time.Time, id string) []byte {
	nanos := t.UnixNano()
	if nanos < 0 {
		nanos = 0
	}
	return []byte(fmt.Sprintf("%020d_%s", nanos, id))
}
