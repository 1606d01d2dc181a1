package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
	"github.com/kursadbilgin/dispatch-console/internal/observability"
	"github.com/kursadbilgin/dispatch-console/internal/repository"
	"github.com/kursadbilgin/dispatch-console/internal/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ViewDashboard = "dashboard"
	ViewOverview  = "overview"
	ViewStatus    = "status"
	ViewChannels  = "channels"
	ViewProviders = "providers"
	ViewRetries   = "retries"
)

// StatsCache memoizes computed views. Implementations report a miss as
// (false, nil).
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// NotificationPage is one page of the raw notification log.
type NotificationPage struct {
	Records  []domain.NotificationRecord
	Page     int
	PageSize int
	Total    int64
}

type StatsService struct {
	records repository.NotificationRepository
	cache   StatsCache
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatsService wires the analytics read path. cache may be nil, in which
// case every call aggregates a fresh snapshot.
func NewStatsService(
	records repository.NotificationRepository,
	cache StatsCache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*StatsService, error) {
	if records == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatsService{
		records: records,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *StatsService) Dashboard(ctx context.Context, filter repository.RecordFilter) (stats.Dashboard, error) {
	return memoize(ctx, s, ViewDashboard, filter, s.computeDashboard)
}

func (s *StatsService) Overview(ctx context.Context, filter repository.RecordFilter) (stats.Overview, error) {
	return memoize(ctx, s, ViewOverview, filter, wrapPure(stats.ComputeOverview))
}

func (s *StatsService) StatusDistribution(ctx context.Context, filter repository.RecordFilter) ([]stats.StatusShare, error) {
	return memoize(ctx, s, ViewStatus, filter, wrapPure(stats.ComputeStatusDistribution))
}

func (s *StatsService) ChannelPerformance(ctx context.Context, filter repository.RecordFilter) ([]stats.GroupMetric, error) {
	return memoize(ctx, s, ViewChannels, filter, wrapPure(stats.ComputeChannelPerformance))
}

func (s *StatsService) ProviderComparison(ctx context.Context, filter repository.RecordFilter) ([]stats.ProviderMetric, error) {
	return memoize(ctx, s, ViewProviders, filter, wrapPure(stats.ComputeProviderComparison))
}

func (s *StatsService) RetryDistribution(ctx context.Context, filter repository.RecordFilter) ([]stats.RetryBucket, error) {
	return memoize(ctx, s, ViewRetries, filter, wrapPure(stats.ComputeRetryDistribution))
}

// FetchNotifications returns one validated page of the log, newest first.
func (s *StatsService) FetchNotifications(ctx context.Context, params repository.ListParams) (NotificationPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateFilter(params.RecordFilter); err != nil {
		return NotificationPage{}, err
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = repository.DefaultPageSize
	}
	if params.PageSize > repository.MaxPageSize {
		return NotificationPage{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, repository.MaxPageSize)
	}

	records, total, err := s.records.List(ctx, params)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	if err := domain.ValidateRecords(records); err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("notification log contains invalid record",
			zap.Int("page", params.Page),
			zap.Error(err),
		)
		return NotificationPage{}, domain.NewInconsistentDataError("notification log", err)
	}

	return NotificationPage{
		Records:  records,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	}, nil
}

func (s *StatsService) computeDashboard(ctx context.Context, records []domain.NotificationRecord) (stats.Dashboard, error) {
	var dashboard stats.Dashboard

	// Each view writes only its own field.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		dashboard.Overview = stats.ComputeOverview(records)
		return nil
	})
	g.Go(func() error {
		dashboard.StatusDistribution = stats.ComputeStatusDistribution(records)
		return nil
	})
	g.Go(func() error {
		dashboard.Channels = stats.ComputeChannelPerformance(records)
		return nil
	})
	g.Go(func() error {
		dashboard.Providers = stats.ComputeProviderComparison(records)
		return nil
	})
	g.Go(func() error {
		dashboard.Retries = stats.ComputeRetryDistribution(records)
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats.Dashboard{}, err
	}
	return dashboard, nil
}

// loadSnapshot reads the filtered log and rejects malformed rows before any
// of them reach aggregation. A bad row is a server-side fault, not a caller
// mistake.
func (s *StatsService) loadSnapshot(ctx context.Context, filter repository.RecordFilter) ([]domain.NotificationRecord, error) {
	records, err := s.records.ListRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification log: %w", err)
	}
	if err := domain.ValidateRecords(records); err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("notification log contains invalid record",
			zap.Int("records", len(records)),
			zap.Error(err),
		)
		return nil, domain.NewInconsistentDataError("notification log", err)
	}
	return records, nil
}

// memoize runs compute over a fresh snapshot, consulting the cache first when
// one is configured. Cache failures degrade to a recomputation.
func memoize[T any](
	ctx context.Context,
	s *StatsService,
	view string,
	filter repository.RecordFilter,
	compute func(context.Context, []domain.NotificationRecord) (T, error),
) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateFilter(filter); err != nil {
		return zero, err
	}

	logger := observability.WithContextLogger(s.logger, ctx).With(zap.String("view", view))

	key := ""
	if s.cache != nil {
		fp, err := s.records.Fingerprint(ctx, filter)
		if err != nil {
			logger.Warn("failed to fingerprint notification log, skipping cache", zap.Error(err))
		} else {
			key = cacheKey(view, filter, fp)
			var cached T
			hit, err := s.cache.Get(ctx, key, &cached)
			switch {
			case err != nil:
				s.metrics.IncStatsCache(view, observability.CacheError)
				logger.Warn("stats cache read failed", zap.Error(err))
			case hit:
				s.metrics.IncStatsCache(view, observability.CacheHit)
				return cached, nil
			default:
				s.metrics.IncStatsCache(view, observability.CacheMiss)
			}
		}
	}

	start := s.now()
	records, err := s.loadSnapshot(ctx, filter)
	if err != nil {
		return zero, err
	}

	result, err := compute(ctx, records)
	if err != nil {
		return zero, err
	}
	s.metrics.ObserveStatsComputation(view, len(records), s.now().Sub(start))

	if key != "" {
		if err := s.cache.Set(ctx, key, result); err != nil {
			logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

func wrapPure[T any](fn func([]domain.NotificationRecord) T) func(context.Context, []domain.NotificationRecord) (T, error) {
	return func(_ context.Context, records []domain.NotificationRecord) (T, error) {
		return fn(records), nil
	}
}

func validateFilter(filter repository.RecordFilter) error {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return fmt.Errorf("%w: from must not be after to", domain.ErrValidation)
	}
	return nil
}

// cacheKey hashes the view, the filter and the snapshot fingerprint so any
// write to the filtered rows produces a new key.
func cacheKey(view string, filter repository.RecordFilter, fp repository.Fingerprint) string {
	var b strings.Builder
	b.WriteString(view)
	writeKeyPart(&b, "app", filter.ApplicationID)
	writeKeyPart(&b, "channel", filter.Channel)
	writeKeyPart(&b, "provider", filter.Provider)
	writeTimePart(&b, "from", filter.From)
	writeTimePart(&b, "to", filter.To)
	b.WriteString("|count=")
	b.WriteString(strconv.FormatInt(fp.Count, 10))
	b.WriteString("|updated=")
	b.WriteString(strconv.FormatInt(fp.LastUpdatedAt.UnixNano(), 10))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeKeyPart(b *strings.Builder, name string, value *string) {
	b.WriteString("|")
	b.WriteString(name)
	if value == nil {
		b.WriteString("=*")
		return
	}
	b.WriteString("=")
	b.WriteString(strconv.Quote(*value))
}

func writeTimePart(b *strings.Builder, name string, value *time.Time) {
	b.WriteString("|")
	b.WriteString(name)
	if value == nil {
		b.WriteString("=*")
		return
	}
	b.WriteString("=")
	b.WriteString(strconv.FormatInt(value.UnixNano(), 10))
}
