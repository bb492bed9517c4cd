// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gm "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/pkg/span"
)

const (
	TransportSync  = "sync"
	TransportAsync = "async"

	DefaultMaxBatchSize = 600
	DefaultWaitPeriod   = 60 * time.Second
	DefaultGracePeriod  = 5 * time.Second
	DefaultQueueSize    = 4096
)

var ErrTransportStopped = errors.New("transport stopped")

var (
	droppedSpans gm.Counter
	asyncErrors  gm.Counter
	queuedSpans  gm.Gauge
)

func init() {
	droppedSpans = gm.GetOrRegisterCounter("transport.spans.dropped", gm.DefaultRegistry)
	asyncErrors = gm.GetOrRegisterCounter("transport.emit.errors", gm.DefaultRegistry)
	queuedSpans = gm.GetOrRegisterGauge("transport.queue.size", gm.DefaultRegistry)
}

// Emitter converts and sends a batch of spans. *Exporter is the Emitter used
// in practice.
type Emitter interface {
	Emit(spans []*span.Record) error
}

type Transport interface {
	Export(spans []*span.Record) error
	Flush(ctx context.Context) error
	Stop(ctx context.Context) error
}

type TransportFactory func(Emitter) Transport

// TransportByName returns the factory for a configured transport type.
func TransportByName(name string, cfg AsyncConfig) (TransportFactory, error) {
	switch name {
	case "", TransportSync:
		return NewSyncTransport, nil
	case TransportAsync:
		return NewAsyncTransport(cfg), nil
	default:
		return nil, fmt.Errorf("transport not recognized: %s", name)
	}
}

// SyncTransport emits on the caller's goroutine.
type SyncTransport struct {
	emitter Emitter
}

func NewSyncTransport(e Emitter) Transport {
	return &SyncTransport{emitter: e}
}

func (t *SyncTransport) Export(spans []*span.Record) error {
	return t.emitter.Emit(spans)
}

func (t *SyncTransport) Flush(context.Context) error {
	return nil
}

func (t *SyncTransport) Stop(context.Context) error {
	return nil
}

type AsyncConfig struct {
	MaxBatchSize int           `yaml:"maxBatchSize"`
	WaitPeriod   time.Duration `yaml:"waitPeriod"`
	GracePeriod  time.Duration `yaml:"gracePeriod"`
	QueueSize    int           `yaml:"queueSize"`
}

func (cfg AsyncConfig) withDefaults() AsyncConfig {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.WaitPeriod <= 0 {
		cfg.WaitPeriod = DefaultWaitPeriod
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return cfg
}

// AsyncTransport queues spans and emits them from a worker goroutine, either
// when a full batch has accumulated or when the wait period elapses. Spans
// exported while the queue is full are dropped.
type AsyncTransport struct {
	cfg      AsyncConfig
	emitter  Emitter
	queue    chan *span.Record
	flushes  chan chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// guards stopped so no span is queued once the worker has begun draining
	mutex   sync.RWMutex
	stopped bool
}

func NewAsyncTransport(cfg AsyncConfig) TransportFactory {
	cfg = cfg.withDefaults()
	return func(e Emitter) Transport {
		t := &AsyncTransport{
			cfg:     cfg,
			emitter: e,
			queue:   make(chan *span.Record, cfg.QueueSize),
			flushes: make(chan chan struct{}),
			stop:    make(chan struct{}),
			done:    make(chan struct{}),
		}
		go t.run()
		return t
	}
}

func (t *AsyncTransport) Export(spans []*span.Record) error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if t.stopped {
		return ErrTransportStopped
	}
	dropped := 0
	for _, rec := range spans {
		if rec == nil {
			continue
		}
		select {
		case t.queue <- rec:
		default:
			dropped++
		}
	}
	queuedSpans.Update(int64(len(t.queue)))
	if dropped > 0 {
		droppedSpans.Inc(int64(dropped))
		log.WithField("dropped", dropped).Debug("span queue full")
	}
	return nil
}

// Flush emits everything queued so far and waits for it to be handed to the
// emitter.
func (t *AsyncTransport) Flush(ctx context.Context) error {
	req := make(chan struct{})
	select {
	case t.flushes <- req:
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains the queue within the grace period and stops the worker.
func (t *AsyncTransport) Stop(ctx context.Context) error {
	t.stopOnce.Do(func() {
		t.mutex.Lock()
		t.stopped = true
		close(t.stop)
		t.mutex.Unlock()
	})
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *AsyncTransport) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.cfg.WaitPeriod)
	defer ticker.Stop()

	batch := t.newBatch()
	for {
		select {
		case rec := <-t.queue:
			batch = append(batch, rec)
			if len(batch) >= t.cfg.MaxBatchSize {
				batch = t.emit(batch)
			}
		case <-ticker.C:
			batch = t.emit(batch)
		case req := <-t.flushes:
			batch = t.drain(batch, time.Time{})
			close(req)
		case <-t.stop:
			t.drain(batch, time.Now().Add(t.cfg.GracePeriod))
			log.Info("async transport stopped")
			return
		}
	}
}

// drain emits every queued span. Spans still queued once the deadline has
// passed are dropped. A zero deadline never expires.
func (t *AsyncTransport) drain(batch []*span.Record, deadline time.Time) []*span.Record {
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			dropped := len(t.queue) + len(batch)
			droppedSpans.Inc(int64(dropped))
			log.WithField("dropped", dropped).Warn("grace period expired before the span queue drained")
			return t.newBatch()
		}
		select {
		case rec := <-t.queue:
			batch = append(batch, rec)
			if len(batch) >= t.cfg.MaxBatchSize {
				batch = t.emit(batch)
			}
		default:
			return t.emit(batch)
		}
	}
}

func (t *AsyncTransport) emit(batch []*span.Record) []*span.Record {
	if len(batch) == 0 {
		return batch
	}
	if err := t.emitter.Emit(batch); err != nil {
		asyncErrors.Inc(1)
		log.WithFields(log.Fields{
			"spans": len(batch),
			"error": err,
		}).Error("error emitting span batch")
	}
	queuedSpans.Update(int64(len(t.queue)))
	return t.newBatch()
}

func (t *AsyncTransport) newBatch() []*span.Record {
	return make([]*span.Record, 0, t.cfg.MaxBatchSize)
}
