package notifier

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/polsommer/PanelHosting/internal/metrics"
)

// Sink receives events from the dispatcher.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Dispatcher queues events in memory and hands them to sinks from a single
// worker goroutine. Publish never blocks the caller.
type Dispatcher struct {
	events       chan Event
	sinks        []Sink
	drainTimeout time.Duration
}

// NewDispatcher creates a dispatcher with the given queue size.
func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	return &Dispatcher{
		events:       make(chan Event, buffer),
		sinks:        sinks,
		drainTimeout: 5 * time.Second,
	}
}

// Publish enqueues e. When the queue is full the event is dropped.
func (d *Dispatcher) Publish(e Event) {
	select {
	case d.events <- e:
	default:
		metrics.EventsDropped.Inc()
		log.Warn().
			Str("event_id", e.ID.String()).
			Str("event_type", string(e.Type)).
			Msg("notification queue full, dropping event")
	}
}

// Run delivers queued events until ctx is cancelled, then drains whatever is
// still queued using a fresh deadline. It always returns nil so it can be
// used directly in an errgroup.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case e := <-d.events:
			d.deliver(ctx, e)
		case <-ctx.Done():
			d.drain()
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()
	for {
		select {
		case e := <-d.events:
			d.deliver(ctx, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, e); err != nil {
			metrics.EventsDelivered.WithLabelValues(s.Name(), metrics.ResultError).Inc()
			log.Error().
				Err(err).
				Str("sink", s.Name()).
				Str("event_id", e.ID.String()).
				Str("event_type", string(e.Type)).
				Msg("failed to deliver event")
			continue
		}
		metrics.EventsDelivered.WithLabelValues(s.Name(), metrics.ResultOK).Inc()
	}
}
