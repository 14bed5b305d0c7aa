package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/pkg/sqlbuilder"
	"github.com/fastygo/crm-reports/repository"
)

// SnapshotStore implements repository.SnapshotReader over SQLite.
type SnapshotStore struct {
	db     *sql.DB
	schema repository.Schema
}

// NewSnapshotStore creates a SnapshotStore. All tables of one snapshot are
// read inside a single transaction.
func NewSnapshotStore(db *sql.DB, schema repository.Schema) *SnapshotStore {
	return &SnapshotStore{db: db, schema: schema}
}

func (s *SnapshotStore) Load(ctx context.Context, query repository.SnapshotQuery) (*domain.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshot := &domain.Snapshot{TakenAt: time.Now().UTC()}

	if f := query.Customers; f != nil {
		if snapshot.Customers, err = collect(ctx, tx, s.schema.CustomerQuery(*f, dateArg), scanCustomer); err != nil {
			return nil, fmt.Errorf("load customers: %w", err)
		}
	}
	if f := query.Policies; f != nil {
		if snapshot.Policies, err = collect(ctx, tx, s.schema.PolicyQuery(*f, dateArg), scanPolicy); err != nil {
			return nil, fmt.Errorf("load policies: %w", err)
		}
	}
	if f := query.Representatives; f != nil {
		if snapshot.Representatives, err = collect(ctx, tx, s.schema.RepresentativeQuery(*f), scanRepresentative); err != nil {
			return nil, fmt.Errorf("load representatives: %w", err)
		}
	}
	if f := query.Offers; f != nil {
		if snapshot.Offers, err = collect(ctx, tx, s.schema.OfferQuery(*f, dateArg), scanOffer); err != nil {
			return nil, fmt.Errorf("load offers: %w", err)
		}
	}
	if f := query.Tasks; f != nil {
		if snapshot.Tasks, err = collect(ctx, tx, s.schema.TaskQuery(*f, dateArg), scanTask); err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snapshot, nil
}

func collect[T any](ctx context.Context, tx *sql.Tx, q *sqlbuilder.SelectBuilder, scan func(scanner) (T, error)) ([]T, error) {
	text, args, err := q.Build(sqlbuilder.SQLite)
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
