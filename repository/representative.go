package repository

import (
	"context"

	"github.com/fastygo/crm-reports/domain"
)

type RepresentativeRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Representative, error)
	Create(ctx context.Context, rep *domain.Representative) error
}
