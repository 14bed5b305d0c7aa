package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

// RepresentativeStore implements repository.RepresentativeRepository using SQLite.
type RepresentativeStore struct {
	db    *sql.DB
	table string
}

func NewRepresentativeStore(db *sql.DB, schema repository.Schema) *RepresentativeStore {
	return &RepresentativeStore{db: db, table: schema.Table(repository.EntityRepresentatives)}
}

// GetByUserID returns the representative row linked to a platform user.
func (s *RepresentativeStore) GetByUserID(ctx context.Context, userID int64) (*domain.Representative, error) {
	query := fmt.Sprintf("SELECT id, user_id, display_name, title, role_level, status, department, created_at FROM %s WHERE user_id = ? ORDER BY id LIMIT 1", s.table)

	rep, err := scanRepresentative(s.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRepresentativeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Create inserts rep and fills in its id.
func (s *RepresentativeStore) Create(ctx context.Context, rep *domain.Representative) error {
	if rep == nil {
		return domain.ErrInvalidPayload
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf("INSERT INTO %s (user_id, display_name, title, role_level, status, department, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	res, err := s.db.ExecContext(ctx, query,
		rep.UserID, rep.DisplayName, rep.Title, rep.RoleLevel, rep.Status, rep.Department, FormatTime(rep.CreatedAt))
	if err != nil {
		return err
	}
	rep.ID, err = res.LastInsertId()
	return err
}
