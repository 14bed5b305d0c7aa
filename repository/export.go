package repository

import (
	"context"
	"time"

	"github.com/fastygo/crm-reports/domain"
)

// ExportRepository persists exported documents until they are downloaded or expire.
type ExportRepository interface {
	Save(ctx context.Context, doc *domain.ExportedDocument) error
	Get(ctx context.Context, id string) (*domain.ExportedDocument, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
