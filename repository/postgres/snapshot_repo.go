package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/pkg/sqlbuilder"
	"github.com/fastygo/crm-reports/repository"
)

type snapshotRepository struct {
	pool   *pgxpool.Pool
	schema repository.Schema
}

// NewSnapshotRepository returns a Postgres-backed SnapshotReader. Every
// snapshot is read inside one read-only repeatable-read transaction.
func NewSnapshotRepository(pool *pgxpool.Pool, schema repository.Schema) repository.SnapshotReader {
	return &snapshotRepository{pool: pool, schema: schema}
}

func (r *snapshotRepository) Load(ctx context.Context, query repository.SnapshotQuery) (*domain.Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshot := &domain.Snapshot{TakenAt: time.Now().UTC()}

	if f := query.Customers; f != nil {
		if snapshot.Customers, err = collect(ctx, tx, r.schema.CustomerQuery(*f, timeArg), scanCustomer); err != nil {
			return nil, fmt.Errorf("load customers: %w", err)
		}
	}
	if f := query.Policies; f != nil {
		if snapshot.Policies, err = collect(ctx, tx, r.schema.PolicyQuery(*f, timeArg), scanPolicy); err != nil {
			return nil, fmt.Errorf("load policies: %w", err)
		}
	}
	if f := query.Representatives; f != nil {
		if snapshot.Representatives, err = collect(ctx, tx, r.schema.RepresentativeQuery(*f), scanRepresentative); err != nil {
			return nil, fmt.Errorf("load representatives: %w", err)
		}
	}
	if f := query.Offers; f != nil {
		if snapshot.Offers, err = collect(ctx, tx, r.schema.OfferQuery(*f, timeArg), scanOffer); err != nil {
			return nil, fmt.Errorf("load offers: %w", err)
		}
	}
	if f := query.Tasks; f != nil {
		if snapshot.Tasks, err = collect(ctx, tx, r.schema.TaskQuery(*f, timeArg), scanTask); err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snapshot, nil
}

func collect[T any](ctx context.Context, tx pgx.Tx, q *sqlbuilder.SelectBuilder, scan func(scanner) (T, error)) ([]T, error) {
	text, args, err := q.Build(sqlbuilder.Postgres)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, text, args...)
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
