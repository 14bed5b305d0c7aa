package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
	"github.com/fastygo/crm-reports/usecase/report"
)

const filenameTimeLayout = "20060102-150405"

type UseCase struct {
	store  repository.ExportRepository
	clock  func() time.Time
	logger *zap.Logger
}

type Option func(*UseCase)

func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.clock = clock
		}
	}
}

// New builds the export adapter. A nil store means documents are returned
// to the caller but never persisted.
func New(store repository.ExportRepository, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		store:  store,
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Export serializes rep into the requested format and stores the document.
func (uc *UseCase) Export(ctx context.Context, rep *report.Report, format string) (*domain.ExportedDocument, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if rep == nil || rep.Data == nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "nothing to export", domain.ErrInvalidPayload)
	}
	enc := encoders[f]

	content, err := enc.encode(rep)
	if err != nil {
		uc.logger.Error("failed to encode report",
			zap.String("report", rep.Name),
			zap.String("format", string(f)),
			zap.Error(err),
		)
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to encode report", err)
	}

	now := uc.clock().UTC()
	doc := &domain.ExportedDocument{
		ID:           uuid.NewString(),
		Report:       rep.Name,
		Format:       string(f),
		Filename:     fmt.Sprintf("%s-%s.%s", rep.Name, now.Format(filenameTimeLayout), enc.ext),
		ContentType:  enc.contentType,
		Size:         len(content),
		MaxRoleLevel: rep.MaxRoleLevel,
		CreatedAt:    now,
		Content:      content,
	}

	if uc.store != nil {
		if err := uc.store.Save(ctx, doc); err != nil {
			uc.logger.Error("failed to store exported document", zap.String("id", doc.ID), zap.Error(err))
			return nil, err
		}
	}
	uc.logger.Debug("report exported",
		zap.String("id", doc.ID),
		zap.String("report", doc.Report),
		zap.String("format", doc.Format),
		zap.Int("size", doc.Size),
	)
	return doc, nil
}

// Get loads a previously exported document on behalf of viewer, applying the
// role restriction of the report it was exported from.
func (uc *UseCase) Get(ctx context.Context, id string, viewer domain.Viewer) (*domain.ExportedDocument, error) {
	if uc.store == nil {
		return nil, domain.ErrDocumentNotFound
	}
	doc, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(doc.MaxRoleLevel) {
		uc.logger.Info("export download refused",
			zap.String("id", doc.ID),
			zap.String("report", doc.Report),
			zap.Int64("representative_id", viewer.RepresentativeID),
		)
		return nil, domain.WrapError(domain.ErrCodeForbidden,
			fmt.Sprintf("report %q requires role level %d or lower", doc.Report, doc.MaxRoleLevel), domain.ErrForbidden)
	}
	return doc, nil
}

// Purge removes documents created more than retention ago.
func (uc *UseCase) Purge(ctx context.Context, retention time.Duration) (int, error) {
	if uc.store == nil || retention <= 0 {
		return 0, nil
	}
	return uc.store.DeleteBefore(ctx, uc.clock().Add(-retention))
}
