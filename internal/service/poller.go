package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/transitops/transit-collector/internal/domain"
	"github.com/transitops/transit-collector/internal/observability"
)

// Ingestor processes one feed once.
type Ingestor interface {
	IngestFeed(ctx context.Context, feed domain.FeedSource) error
}

const (
	defaultPollInterval  = 2 * time.Minute
	defaultConcurrency   = 4
	maxBackoffCycles     = 8
	backoffJitterPercent = 10
)

// feedState tracks the consecutive-failure streak driving per-feed backoff.
type feedState struct {
	failureStreak int
	retryAt       time.Time
	lastError     string
}

// FeedStatus is a point-in-time view of one feed's health for the status
// endpoint.
type FeedStatus struct {
	Name          string    `json:"name"`
	Family        string    `json:"family"`
	FailureStreak int       `json:"failureStreak"`
	RetryAt       time.Time `json:"retryAt,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
}

// PollerStatus is a point-in-time view of the whole poller.
type PollerStatus struct {
	CyclesCompleted   int64         `json:"cyclesCompleted"`
	LastCycleStarted  time.Time     `json:"lastCycleStarted"`
	LastCycleDuration time.Duration `json:"lastCycleDurationNs"`
	Feeds             []FeedStatus  `json:"feeds"`
}

// Poller drives the periodic collection loop: every interval it fans the
// catalog out over a bounded worker pool, one ingest per feed. The catalog is
// fixed at construction; feeds in a failure streak are skipped until their
// backoff expires.
type Poller struct {
	catalog     domain.Catalog
	ingestor    Ingestor
	interval    time.Duration
	concurrency int
	logger      *zap.Logger
	metrics     *observability.Metrics

	now      func() time.Time
	randIntn func(n int) int

	mu              sync.Mutex
	states          map[string]*feedState
	cyclesCompleted int64
	lastCycleStart  time.Time
	lastCycleTook   time.Duration
}

func NewPoller(
	catalog domain.Catalog,
	ingestor Ingestor,
	interval time.Duration,
	concurrency int,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*Poller, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog is required")
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if ingestor == nil {
		return nil, fmt.Errorf("ingestor is required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	states := make(map[string]*feedState, len(catalog))
	for _, feed := range catalog {
		states[feed.Name] = &feedState{}
	}

	return &Poller{
		catalog:     catalog,
		ingestor:    ingestor,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
		randIntn:    rand.Intn,
		states:      states,
	}, nil
}

// Start runs an immediate cycle, then one per interval until the context is
// canceled.
func (p *Poller) Start(ctx context.Context) error {
	p.logger.Info("poller started",
		zap.Int("feeds", len(p.catalog)),
		zap.Duration("interval", p.interval),
		zap.Int("concurrency", p.concurrency),
	)

	p.runCycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	start := p.now()

	p.mu.Lock()
	p.lastCycleStart = start
	p.mu.Unlock()

	g, cycleCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, feed := range p.catalog {
		if retryAt, skip := p.inBackoff(feed.Name, start); skip {
			p.logger.Debug("feed in backoff, skipping",
				zap.String("feed", feed.Name),
				zap.Time("retryAt", retryAt),
			)
			continue
		}

		feed := feed
		g.Go(func() error {
			p.ingestOne(cycleCtx, feed)
			return nil
		})
	}

	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	took := p.now().Sub(start)
	p.metrics.ObserveCycleDuration(took)

	p.mu.Lock()
	p.cyclesCompleted++
	p.lastCycleTook = took
	p.mu.Unlock()

	p.logger.Info("poll cycle finished", zap.Duration("took", took))
}

// ingestOne isolates one feed's ingest: a panic or error here never disturbs
// the other feeds or the cycle loop.
func (p *Poller) ingestOne(ctx context.Context, feed domain.FeedSource) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("feed ingest panicked",
				zap.String("feed", feed.Name),
				zap.Any("panic", r),
			)
			p.recordFailure(feed.Name, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := p.ingestor.IngestFeed(ctx, feed); err != nil {
		p.logger.Error("feed ingest failed",
			zap.String("feed", feed.Name),
			zap.Error(err),
		)
		p.recordFailure(feed.Name, err.Error())
		return
	}

	p.recordSuccess(feed.Name)
}

func (p *Poller) inBackoff(feedName string, at time.Time) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[feedName]
	if !ok || state.failureStreak == 0 {
		return time.Time{}, false
	}
	if at.Before(state.retryAt) {
		return state.retryAt, true
	}
	return time.Time{}, false
}

func (p *Poller) recordSuccess(feedName string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.states[feedName]; ok {
		state.failureStreak = 0
		state.retryAt = time.Time{}
		state.lastError = ""
	}
}

func (p *Poller) recordFailure(feedName string, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[feedName]
	if !ok {
		return
	}

	state.failureStreak++
	state.lastError = detail
	state.retryAt = p.now().Add(p.computeBackoffDelay(state.failureStreak))
}

// computeBackoffDelay doubles the poll interval per consecutive failure,
// capped, with jitter so recovering feeds do not realign into one burst.
func (p *Poller) computeBackoffDelay(failureStreak int) time.Duration {
	cycles := 1
	for i := 1; i < failureStreak && cycles < maxBackoffCycles; i++ {
		cycles *= 2
	}
	if cycles > maxBackoffCycles {
		cycles = maxBackoffCycles
	}

	delay := time.Duration(cycles) * p.interval

	jitterRange := int64(delay) * backoffJitterPercent / 100
	if jitterRange > 0 {
		delay += time.Duration(p.randIntn(int(jitterRange)))
	}

	return delay
}

// Status reports the current cycle counters and per-feed health, sorted by
// feed name.
func (p *Poller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	feeds := make([]FeedStatus, 0, len(p.catalog))
	for _, feed := range p.catalog {
		status := FeedStatus{
			Name:   feed.Name,
			Family: feed.Family.String(),
		}
		if state, ok := p.states[feed.Name]; ok {
			status.FailureStreak = state.failureStreak
			status.RetryAt = state.retryAt
			status.LastError = state.lastError
		}
		feeds = append(feeds, status)
	}

	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Name < feeds[j].Name })

	return PollerStatus{
		CyclesCompleted:   p.cyclesCompleted,
		LastCycleStarted:  p.lastCycleStart,
		LastCycleDuration: p.lastCycleTook,
		Feeds:             feeds,
	}
}
