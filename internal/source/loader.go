package source

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/angeloszaimis/source-dashboard/internal/metrics"
	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

// Options configures a Loader.
type Options struct {
	// Name identifies the source in logs and metrics.
	Name    string
	Fetcher Fetcher
	Logger  *slog.Logger
	// Events receives cycle events; nil disables them.
	Events chan<- metrics.MetricEvent
	// Now defaults to time.Now.
	Now func() time.Time
}

// Loader owns the fetch lifecycle and LoadState of one source.
// All state mutation happens under mu; an outcome is applied only when its
// cycle's generation equals the current generation and the loader is open.
type Loader struct {
	name    string
	fetcher Fetcher
	logger  *slog.Logger
	events  chan<- metrics.MetricEvent
	now     func() time.Time
	parent  context.Context

	mu         sync.Mutex
	endpoint   string
	generation uint64
	cancel     context.CancelFunc
	state      LoadState
	version    uint64
	closed     bool

	wg sync.WaitGroup
}

// NewLoader returns an idle Loader. Cancelling ctx cancels every cycle the
// loader starts and their outcomes are discarded.
func NewLoader(ctx context.Context, opts Options) (*Loader, error) {
	if opts.Name == "" {
		return nil, errors.New("source: name required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("source: fetcher required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Loader{
		name:    opts.Name,
		fetcher: opts.Fetcher,
		logger:  log.With(slog.String("source", opts.Name)),
		events:  opts.Events,
		now:     now,
		parent:  ctx,
		state:   initialState(),
	}, nil
}

// Name returns the source name.
func (l *Loader) Name() string {
	return l.name
}

// SetEndpoint starts a cycle when endpoint differs from the endpoint of the
// latest cycle. It reports whether a cycle was started.
func (l *Loader) SetEndpoint(endpoint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || endpoint == "" {
		return false
	}
	if l.generation > 0 && endpoint == l.endpoint {
		return false
	}

	l.startLocked(endpoint)
	return true
}

// Trigger starts a new cycle for endpoint, superseding any pending one.
// An empty endpoint is unknown and leaves the loader untouched.
func (l *Loader) Trigger(endpoint string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || endpoint == "" {
		return
	}

	l.startLocked(endpoint)
}

// startLocked expects mu to be held. The loading state is visible before
// the request goroutine exists.
func (l *Loader) startLocked(endpoint string) {
	if l.cancel != nil {
		l.cancel()
	}

	l.generation++
	gen := l.generation

	ctx, cancel := context.WithCancel(l.parent)
	l.cancel = cancel
	l.endpoint = endpoint

	l.state.Phase = PhaseLoading
	l.state.IsLoading = true
	l.state.Error = ""
	l.state.Endpoint = endpoint
	l.state.Generation = gen
	l.version++

	started := l.now()

	l.logger.Info("Fetching data",
		slog.String("url", endpoint),
		slog.Uint64("generation", gen))

	metrics.Emit(l.events, metrics.MetricEvent{
		Type:      metrics.EventCycleStarted,
		Timestamp: started,
		Source:    l.name,
		Endpoint:  endpoint,
	})

	l.wg.Add(1)
	go l.run(ctx, gen, endpoint, started)
}

func (l *Loader) run(ctx context.Context, gen uint64, endpoint string, started time.Time) {
	defer l.wg.Done()

	records, err := l.fetcher.Fetch(ctx, endpoint)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.generation || ctx.Err() != nil {
		l.logger.Debug("Discarding superseded cycle",
			slog.String("url", endpoint),
			slog.Uint64("generation", gen))

		metrics.Emit(l.events, metrics.MetricEvent{
			Type:     metrics.EventCycleDiscarded,
			Source:   l.name,
			Endpoint: endpoint,
		})
		return
	}

	l.cancel()
	l.cancel = nil

	finished := l.now()
	duration := finished.Sub(started)

	if err != nil {
		l.applyFailure(endpoint, gen, err, duration)
	} else {
		l.applySuccess(endpoint, gen, records, finished, duration)
	}
	l.version++
}

// applyFailure expects mu to be held. LastUpdatedAt keeps the last known
// good completion time.
func (l *Loader) applyFailure(endpoint string, gen uint64, err error, duration time.Duration) {
	l.state = LoadState{
		Phase:         PhaseFailed,
		Error:         err.Error(),
		Records:       []Record{},
		LastUpdatedAt: l.state.LastUpdatedAt,
		Endpoint:      endpoint,
		Generation:    gen,
	}

	var statusCode int
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		statusCode = reqErr.StatusCode
	}

	l.logger.Warn("Fetch failed",
		slog.String("url", endpoint),
		slog.Int("status", statusCode),
		slog.Any("err", err))

	metrics.Emit(l.events, metrics.MetricEvent{
		Type:       metrics.EventCycleFailed,
		Source:     l.name,
		Endpoint:   endpoint,
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// applySuccess expects mu to be held.
func (l *Loader) applySuccess(endpoint string, gen uint64, records []Record, finished time.Time, duration time.Duration) {
	if records == nil {
		records = []Record{}
	}

	l.state = LoadState{
		Phase:         PhaseSuccess,
		Records:       records,
		LastUpdatedAt: finished,
		Endpoint:      endpoint,
		Generation:    gen,
	}

	l.logger.Info("Fetched data",
		slog.String("url", endpoint),
		slog.Int("records", len(records)),
		slog.Duration("took", duration))

	metrics.Emit(l.events, metrics.MetricEvent{
		Type:     metrics.EventCycleSucceeded,
		Source:   l.name,
		Endpoint: endpoint,
		Duration: duration,
		Records:  len(records),
	})
}

// State returns a copy of the current LoadState.
func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Version increases with every state mutation.
func (l *Loader) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Endpoint returns the endpoint of the latest cycle.
func (l *Loader) Endpoint() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.endpoint
}

// Close cancels any pending cycle. The state is frozen afterwards.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	l.logger.Debug("Loader closed")
}

// Wait blocks until every cycle goroutine has returned.
func (l *Loader) Wait() {
	l.wg.Wait()
}
