package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/angeloszaimis/source-dashboard/pkg/logger"
)

type EventType string

const (
	EventCycleStarted   EventType = "cycle_started"
	EventCycleSucceeded EventType = "cycle_succeeded"
	EventCycleFailed    EventType = "cycle_failed"
	EventCycleDiscarded EventType = "cycle_discarded"
	EventConfigResolved EventType = "config_resolved"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Source     string
	Endpoint   string
	Duration   time.Duration
	StatusCode int
	Records    int
}

type Collector struct {
	eventCh    chan MetricEvent
	metrics    *Metrics
	prometheus *promMetrics
	logger     *slog.Logger
}

func NewCollector(bufferSize int, log *slog.Logger) *Collector {
	if log == nil {
		log = logger.Discard()
	}
	return &Collector{
		eventCh:    make(chan MetricEvent, bufferSize),
		metrics:    NewMetrics(),
		prometheus: newPromMetrics(),
		logger:     log,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	c.prometheus.observe(event)

	switch event.Type {
	case EventCycleStarted:
		c.metrics.RecordCycleStarted(event.Source, event.Endpoint)

	case EventCycleSucceeded:
		c.metrics.RecordSuccess(event.Source, event.Duration, event.Records)

	case EventCycleFailed:
		c.metrics.RecordFailure(event.Source, event.Duration, event.StatusCode)

	case EventCycleDiscarded:
		c.metrics.RecordDiscarded(event.Source)

	case EventConfigResolved:
		c.metrics.RecordConfigResolved()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}

// Emit sends event on ch without blocking. A nil channel or a full buffer
// drops the event.
func Emit(ch chan<- MetricEvent, event MetricEvent) {
	if ch == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case ch <- event:
	default:
	}
}
