package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sjktech/odledger/internal/cache"
	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/ledger"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/metrics"
	"github.com/sjktech/odledger/internal/report"
	apperrors "github.com/sjktech/odledger/pkg/errors"
)

// LedgerService turns simulation requests into results: it validates against
// the configured business limits, resolves the installment, runs the engine,
// and assembles the response. The engine itself stays pure; everything
// operational (cache, metrics, tracing) lives here.
type LedgerService struct {
	cache  cache.ResultCache
	config *config.Config
	tracer trace.Tracer
}

// NewLedgerService builds the service. resultCache may be nil, which disables
// caching; results are recomputed on every call.
func NewLedgerService(resultCache cache.ResultCache, cfg *config.Config) *LedgerService {
	return &LedgerService{
		cache:  resultCache,
		config: cfg,
		tracer: otel.Tracer("odledger/service"),
	}
}

// Run executes one simulation. Identical requests yield identical ledgers, so
// a cached result is returned as-is when available; cache failures degrade to
// recomputation, never to a request failure.
func (s *LedgerService) Run(ctx context.Context, request *domain.SimulationRequest) (*domain.SimulationResult, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerService.Run")
	defer span.End()
	timer := prometheus.NewTimer(metrics.SimulationDuration)
	defer timer.ObserveDuration()

	result, err := s.run(ctx, request)
	if err != nil {
		span.SetAttributes(attribute.String("error", "true"))
		metrics.SimulationsTotal.WithLabelValues(statusLabel(err)).Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("ledger.rows", len(result.Rows)),
		attribute.String("ledger.run_id", result.RunID.String()),
	)
	metrics.SimulationsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.LedgerRowsEmitted.Observe(float64(len(result.Rows)))
	return result, nil
}

// Aggregate runs the simulation (possibly served from cache) and evaluates
// one derived query over its rows.
func (s *LedgerService) Aggregate(ctx context.Context, request *domain.SimulationRequest, query report.Query) (report.Result, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerService.Aggregate")
	defer span.End()
	span.SetAttributes(attribute.String("query.kind", query.Kind.String()))

	if _, err := report.ParseQueryKind(query.Kind.String()); err != nil {
		return report.Result{}, err
	}

	result, err := s.Run(ctx, request)
	if err != nil {
		return report.Result{}, err
	}
	return report.Evaluate(result.Rows, query.Kind, query.From, query.To)
}

func (s *LedgerService) run(ctx context.Context, request *domain.SimulationRequest) (*domain.SimulationResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLimits(request); err != nil {
		return nil, err
	}

	key := s.cacheKey(ctx, request)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	terms := request.Terms()
	installment, err := ledger.ComputeInstallment(terms.Principal, terms.AnnualRatePercent, terms.TenureYears)
	if err != nil {
		return nil, err
	}
	if request.Installment != nil {
		if request.Installment.LessThan(installment) {
			return nil, apperrors.WrapLowInstallment(request.Installment.StringFixed(2), installment.StringFixed(2))
		}
		installment = request.Installment.Round(2)
	}

	rows, transitions, err := ledger.Simulate(terms, installment, request.Events)
	if err != nil {
		return nil, err
	}

	result := &domain.SimulationResult{
		RunID:       uuid.New(),
		Installment: installment,
		Rows:        rows,
		Transitions: transitions,
		GeneratedAt: time.Now().UTC(),
	}
	if date, ok := report.ClosureDate(rows); ok {
		result.ClosureDate = &date
	}

	s.toCache(ctx, key, result)
	return result, nil
}

// checkLimits bounds a request against the configured ceilings. The engine
// would happily amortize a millennium; the limits keep one request from
// asking for it.
func (s *LedgerService) checkLimits(request *domain.SimulationRequest) error {
	if max := s.config.GetMaxPrincipal(); request.Principal.GreaterThan(max) {
		return apperrors.WrapInvalidTerms(fmt.Sprintf("principal %s exceeds the maximum %s", request.Principal, max))
	}
	if max := s.config.GetMaxRatePercent(); request.AnnualRatePercent.GreaterThan(max) {
		return apperrors.WrapInvalidTerms(fmt.Sprintf("annual rate %s%% exceeds the maximum %s%%", request.AnnualRatePercent, max))
	}
	if max := s.config.GetMaxTenureYears(); request.TenureYears.GreaterThan(max) {
		return apperrors.WrapInvalidTerms(fmt.Sprintf("tenure %s years exceeds the maximum %s", request.TenureYears, max))
	}
	if max := s.config.Business.MaxEvents; len(request.Events) > max {
		return apperrors.WrapInvalidEvent(fmt.Sprintf("%d events exceed the maximum %d", len(request.Events), max))
	}
	return nil
}

// cacheKey fingerprints the request, or returns "" when caching is off or the
// fingerprint cannot be derived.
func (s *LedgerService) cacheKey(ctx context.Context, request *domain.SimulationRequest) string {
	if s.cache == nil {
		return ""
	}
	key, err := cache.Fingerprint(request)
	if err != nil {
		lg := logger.FromContext(ctx)
		lg.Warn().Err(err).Msg("cannot fingerprint simulation request")
		return ""
	}
	return key
}

func (s *LedgerService) fromCache(ctx context.Context, key string) *domain.SimulationResult {
	if key == "" {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheRequests.WithLabelValues(metrics.CacheError).Inc()
		lg := logger.FromContext(ctx)
		lg.Warn().Err(err).Msg("result cache read failed")
		return nil
	}
	if cached == nil {
		metrics.CacheRequests.WithLabelValues(metrics.CacheMiss).Inc()
		return nil
	}
	metrics.CacheRequests.WithLabelValues(metrics.CacheHit).Inc()
	return cached
}

func (s *LedgerService) toCache(ctx context.Context, key string, result *domain.SimulationResult) {
	if key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		lg := logger.FromContext(ctx)
		lg.Warn().Err(err).Str("key", key).Msg("result cache write failed")
	}
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidTerms),
		errors.Is(err, apperrors.ErrInvalidEvent),
		errors.Is(err, apperrors.ErrLowInstallment):
		return metrics.StatusInvalid
	default:
		return metrics.StatusError
	}
}
