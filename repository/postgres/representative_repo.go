package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

type representativeRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewRepresentativeRepository instantiates a Postgres-backed representative repository.
func NewRepresentativeRepository(pool *pgxpool.Pool, schema repository.Schema) repository.RepresentativeRepository {
	return &representativeRepository{pool: pool, table: schema.Table(repository.EntityRepresentatives)}
}

func (r *representativeRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Representative, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, display_name, title, role_level, status, department, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY id
		LIMIT 1
	`, r.table)

	rep, err := scanRepresentative(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRepresentativeNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *representativeRepository) Create(ctx context.Context, rep *domain.Representative) error {
	if rep == nil {
		return domain.ErrInvalidPayload
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (user_id, display_name, title, role_level, status, department, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
	RETURNING id, created_at
	`, r.table)

	return r.pool.QueryRow(ctx, query,
		rep.UserID,
		rep.DisplayName,
		rep.Title,
		rep.RoleLevel,
		rep.Status,
		rep.Department,
		nullTime(rep.CreatedAt),
	).Scan(&rep.ID, &rep.CreatedAt)
}
