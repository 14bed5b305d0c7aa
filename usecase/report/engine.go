package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

// Result is the typed outcome of one report. Every report has its own
// implementation; Tables gives exporters a uniform view.
type Result interface {
	Tables() []domain.Table
	isResult()
}

// Report is a computed result with its metadata.
type Report struct {
	Name         string            `json:"report_name"`
	Title        string            `json:"title"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Filters      map[string]string `json:"filters"`
	Data         Result            `json:"data"`
	MaxRoleLevel int               `json:"-"`
}

// Dashboard bundles the overview reports.
type Dashboard struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Filters     map[string]string `json:"filters"`
	Reports     []*Report         `json:"reports"`
	Skipped     []string          `json:"skipped,omitempty"`
}

// DashboardReports are the sections of the dashboard, in display order.
var DashboardReports = []string{CustomerDemographics, PolicyPerformance, RepresentativePerformance, QuoteConversion}

type UseCase struct {
	store   repository.SnapshotReader
	catalog *Catalog
	rules   Rules
	clock   func() time.Time
	logger  *zap.Logger
}

type Option func(*UseCase)

// WithClock overrides the time source used for ages, tenure and renewal windows.
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.clock = clock
		}
	}
}

// WithCatalog replaces DefaultCatalog.
func WithCatalog(catalog *Catalog) Option {
	return func(uc *UseCase) {
		if catalog != nil {
			uc.catalog = catalog
		}
	}
}

// New builds the engine. rules are used as given, zero values included;
// the zero Rules selects DefaultRules.
func New(store repository.SnapshotReader, rules Rules, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == (Rules{}) {
		rules = DefaultRules()
	}
	uc := &UseCase{
		store:   store,
		catalog: DefaultCatalog(),
		rules:   rules,
		clock:   time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) Catalog() *Catalog {
	return uc.catalog
}

func (uc *UseCase) Rules() Rules {
	return uc.rules
}

// Run executes one named report for viewer.
func (uc *UseCase) Run(ctx context.Context, name string, raw map[string]string, viewer domain.Viewer) (*Report, error) {
	def, err := uc.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	pred, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, def, pred, viewer)
}

func (uc *UseCase) run(ctx context.Context, def *Definition, pred domain.Predicate, viewer domain.Viewer) (*Report, error) {
	if !viewer.CanAccess(def.MaxRoleLevel) {
		return nil, domain.WrapError(domain.ErrCodeForbidden,
			fmt.Sprintf("report %q requires role level %d or lower", def.Name, def.MaxRoleLevel), domain.ErrForbidden)
	}
	pred = def.restrict(pred)
	filters := pred.Raw()
	for _, key := range def.Required {
		if _, ok := filters[key]; !ok {
			return nil, domain.FieldError(domain.ErrCodeInvalidFilter, key,
				fmt.Sprintf("report %q requires filter %q", def.Name, key))
		}
	}

	started := uc.clock()
	snap, err := uc.store.Load(ctx, snapshotQuery(def, pred))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		uc.logger.Error("failed to load report snapshot", zap.String("report", def.Name), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeDataStore, "load report data", err)
	}

	now := uc.clock()
	result := def.Aggregate(pred, snap, Env{Now: now, Rules: uc.rules})

	uc.logger.Debug("report computed",
		zap.String("report", def.Name),
		zap.Int("customers", len(snap.Customers)),
		zap.Int("policies", len(snap.Policies)),
		zap.Duration("elapsed", now.Sub(started)),
	)

	return &Report{
		Name:         def.Name,
		Title:        def.Title,
		GeneratedAt:  now.UTC(),
		Filters:      filters,
		Data:         result,
		MaxRoleLevel: def.MaxRoleLevel,
	}, nil
}

// Dashboard runs DashboardReports concurrently, leaving out the sections the
// viewer may not open.
func (uc *UseCase) Dashboard(ctx context.Context, raw map[string]string, viewer domain.Viewer) (*Dashboard, error) {
	pred, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	var (
		defs    []*Definition
		skipped []string
	)
	for _, name := range DashboardReports {
		def, err := uc.catalog.Lookup(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		if !viewer.CanAccess(def.MaxRoleLevel) {
			skipped = append(skipped, name)
			continue
		}
		defs = append(defs, def)
	}

	reports := make([]*Report, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		g.Go(func() error {
			rep, err := uc.run(gctx, def, pred, viewer)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		GeneratedAt: uc.clock().UTC(),
		Filters:     pred.Raw(),
		Reports:     reports,
		Skipped:     skipped,
	}, nil
}

// snapshotQuery derives the tables to load and the filters the store can
// evaluate. pred must already be restricted to the honoured keys.
// Aggregations re-apply the predicate, so pushdown only narrows.
func snapshotQuery(def *Definition, pred domain.Predicate) repository.SnapshotQuery {
	var q repository.SnapshotQuery
	rangeFor := func(e repository.Entity) *domain.DateRange {
		if def.DateScope == e {
			return pred.Range
		}
		return nil
	}

	if def.needs(repository.EntityCustomers) {
		q.Customers = &repository.CustomerFilter{Created: rangeFor(repository.EntityCustomers), City: pred.City}
	}
	if def.needs(repository.EntityPolicies) {
		f := &repository.PolicyFilter{
			Created:  rangeFor(repository.EntityPolicies),
			Statuses: def.PolicyStatuses,
		}
		// Offer-scoped reports join policies by conversion only.
		if def.DateScope != repository.EntityOffers {
			f.Type = pred.PolicyType
			f.CustomerCity = pred.City
		}
		q.Policies = f
	}
	if def.needs(repository.EntityRepresentatives) {
		q.Representatives = &repository.RepresentativeFilter{ActiveOnly: true}
	}
	if def.needs(repository.EntityOffers) {
		q.Offers = &repository.OfferFilter{Created: rangeFor(repository.EntityOffers), Type: pred.PolicyType}
	}
	if def.needs(repository.EntityTasks) {
		q.Tasks = &repository.TaskFilter{Created: rangeFor(repository.EntityTasks)}
	}
	return q
}
