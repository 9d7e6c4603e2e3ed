// Package analytics - emitter.go decouples event producers from the sinks.
// Emit only enqueues; a single worker drains the queue and writes every event
// to every sink with its own timeout. Drops and sink errors are logged and counted.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/metrics"
)

// Emitter accepts events without blocking and without reporting failures.
type Emitter interface {
	Emit(e Event)
}

// Discard drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// Sink persists or forwards events.
type Sink interface {
	Name() string
	Write(ctx context.Context, e Event) error
}

// Dispatcher is the production Emitter.
type Dispatcher struct {
	queue   chan Event
	sinks   []Sink
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}

	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher with a queue of size events. Call Start to begin writing.
func NewDispatcher(size int, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		queue:   make(chan Event, size),
		sinks:   sinks,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Emit enqueues e, or drops it when the queue is full or the dispatcher is closed.
func (d *Dispatcher) Emit(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(e, "dispatcher closed")
		return
	}
	select {
	case d.queue <- e:
		metrics.AnalyticsQueueDepth.Inc()
	default:
		d.drop(e, "queue full")
	}
}

func (d *Dispatcher) drop(e Event, why string) {
	d.dropped.Add(1)
	metrics.AnalyticsEvents.WithLabelValues("queue", "dropped").Inc()
	log.WithFields(log.Fields{
		"event": e.Type,
		"why":   why,
	}).Warn("Analytics event dropped")
}

// Dropped returns how many events were never queued.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Start launches the worker. It must be called at most once.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()

	go d.run()
	log.WithField("sinks", len(d.sinks)).Info("Analytics dispatcher started")
}

// Close stops accepting events and waits until the queued ones are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if started {
		<-d.done
	}
	log.Info("Analytics dispatcher stopped")
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		metrics.AnalyticsQueueDepth.Dec()
		for _, s := range d.sinks {
			d.write(s, e)
		}
	}
}

func (d *Dispatcher) write(s Sink, e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := safeWrite(ctx, s, e)
	if err != nil {
		metrics.AnalyticsEvents.WithLabelValues(s.Name(), "failed").Inc()
		log.WithFields(log.Fields{
			"sink":  s.Name(),
			"event": e.Type,
		}).WithError(err).Error("Analytics write failed")
		return
	}
	metrics.AnalyticsEvents.WithLabelValues(s.Name(), "written").Inc()
}

// safeWrite turns a panicking sink into an error.
func safeWrite(ctx context.Context, s Sink, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Write(ctx, e)
}
