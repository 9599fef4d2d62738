package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitops/transit-collector/internal/domain"
	"github.com/transitops/transit-collector/internal/gtfsrt"
	"github.com/transitops/transit-collector/internal/observability"
	"github.com/transitops/transit-collector/internal/ratelimit"
	"github.com/transitops/transit-collector/internal/repository"
)

// Fetcher retrieves the raw bytes of one feed endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]byte, error)
}

const (
	kindTripUpdates      = "trip_updates"
	kindStopTimeUpdates  = "stop_time_updates"
	kindVehiclePositions = "vehicle_positions"
	kindServiceAlerts    = "service_alerts"
)

// IngestService runs the fetch-decode-normalize-persist pipeline for a single
// feed. Fetch and decode failures are recovered into a failed attempt row;
// only infrastructure failures (the attempt row itself not persisting)
// propagate to the caller.
type IngestService struct {
	fetcher  Fetcher
	attempts repository.AttemptRepository
	records  repository.RecordRepository
	limiter  ratelimit.RateLimiter
	logger   *zap.Logger
	metrics  *observability.Metrics

	now   func() time.Time
	newID func() string
}

func NewIngestService(
	fetcher Fetcher,
	attempts repository.AttemptRepository,
	records repository.RecordRepository,
	limiter ratelimit.RateLimiter,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*IngestService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt repository is required")
	}
	if records == nil {
		return nil, fmt.Errorf("record repository is required")
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IngestService{
		fetcher:  fetcher,
		attempts: attempts,
		records:  records,
		limiter:  limiter,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}, nil
}

// IngestFeed polls one feed once: rate-limit, fetch, decode, write the audit
// attempt, then batch-persist each record kind in its own transaction. Kinds
// commit independently; a failed batch never rolls back a committed one.
func (s *IngestService) IngestFeed(ctx context.Context, feed domain.FeedSource) error {
	if err := feed.Validate(); err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx, feed.Family.String()); err != nil {
		return fmt.Errorf("rate limit wait for feed %q: %w", feed.Name, err)
	}

	attemptID := s.newID()
	ctx = observability.WithAttemptID(ctx, attemptID)
	logger := observability.WithContextLogger(s.logger, ctx).With(
		zap.String("feed", feed.Name),
		zap.String("family", feed.Family.String()),
	)

	s.metrics.IncFeedsInflight()
	defer s.metrics.DecFeedsInflight()

	fetchedAt := s.now().UTC()

	fetchStart := time.Now()
	payload, err := s.fetcher.Fetch(ctx, feed.URL)
	s.metrics.ObserveFetchDuration(feed.Family.String(), time.Since(fetchStart))

	if err != nil {
		logger.Warn("feed fetch failed", zap.Error(err))
		return s.recordFailure(ctx, logger, attemptID, feed, fetchedAt, err)
	}

	message, err := gtfsrt.Decode(payload)
	if err != nil {
		logger.Warn("feed decode failed", zap.Error(err), zap.Int("payloadBytes", len(payload)))
		return s.recordFailure(ctx, logger, attemptID, feed, fetchedAt, err)
	}

	attempt := &domain.FetchAttempt{
		ID:            attemptID,
		FeedName:      feed.Name,
		FeedURL:       feed.URL,
		FetchedAt:     fetchedAt,
		FeedTimestamp: gtfsrt.HeaderTimestamp(message),
		Success:       true,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.metrics.IncFetchAttempt(feed.Name, false)
		return fmt.Errorf("failed to record attempt for feed %q: %w", feed.Name, err)
	}
	s.metrics.IncFetchAttempt(feed.Name, true)

	rows := gtfsrt.Normalize(attemptID, message)
	s.persistRows(ctx, logger, rows)

	logger.Info("feed ingested",
		zap.Int("tripUpdates", len(rows.TripUpdates)),
		zap.Int("stopTimeUpdates", len(rows.StopTimeUpdates)),
		zap.Int("vehiclePositions", len(rows.VehiclePositions)),
		zap.Int("serviceAlerts", len(rows.ServiceAlerts)),
	)

	return nil
}

func (s *IngestService) recordFailure(
	ctx context.Context,
	logger *zap.Logger,
	attemptID string,
	feed domain.FeedSource,
	fetchedAt time.Time,
	cause error,
) error {
	detail := cause.Error()
	attempt := &domain.FetchAttempt{
		ID:          attemptID,
		FeedName:    feed.Name,
		FeedURL:     feed.URL,
		FetchedAt:   fetchedAt,
		Success:     false,
		ErrorDetail: &detail,
	}

	s.metrics.IncFetchAttempt(feed.Name, false)

	if err := s.attempts.Create(ctx, attempt); err != nil {
		logger.Error("failed to record failed attempt", zap.Error(err))
		return fmt.Errorf("failed to record attempt for feed %q: %w", feed.Name, err)
	}

	return nil
}

// persistRows writes each kind's batch in its own transaction. Failures are
// logged and counted; the remaining kinds still commit.
func (s *IngestService) persistRows(ctx context.Context, logger *zap.Logger, rows gtfsrt.RowSet) {
	if err := s.records.WriteTripUpdates(ctx, rows.TripUpdates); err != nil {
		s.metrics.IncPersistFailure(kindTripUpdates)
		logger.Error("failed to persist trip updates", zap.Error(err))
	} else {
		s.metrics.AddRowsPersisted(kindTripUpdates, len(rows.TripUpdates))
	}

	if err := s.records.WriteStopTimeUpdates(ctx, rows.StopTimeUpdates); err != nil {
		s.metrics.IncPersistFailure(kindStopTimeUpdates)
		logger.Error("failed to persist stop time updates", zap.Error(err))
	} else {
		s.metrics.AddRowsPersisted(kindStopTimeUpdates, len(rows.StopTimeUpdates))
	}

	if err := s.records.WriteVehiclePositions(ctx, rows.VehiclePositions); err != nil {
		s.metrics.IncPersistFailure(kindVehiclePositions)
		logger.Error("failed to persist vehicle positions", zap.Error(err))
	} else {
		s.metrics.AddRowsPersisted(kindVehiclePositions, len(rows.VehiclePositions))
	}

	if err := s.records.WriteServiceAlerts(ctx, rows.ServiceAlerts); err != nil {
		s.metrics.IncPersistFailure(kindServiceAlerts)
		logger.Error("failed to persist service alerts", zap.Error(err))
	} else {
		s.metrics.AddRowsPersisted(kindServiceAlerts, len(rows.ServiceAlerts))
	}
}
