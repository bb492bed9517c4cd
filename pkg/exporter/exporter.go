// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package exporter converts finished trace spans into Honeycomb events and
// hands them to a delivery client through a pluggable transport.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	gm "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/wavefronthq/go-metrics-wavefront/reporting"

	"github.com/codeboten/ochoneycomb/internal/filter"
	"github.com/codeboten/ochoneycomb/pkg/client"
	"github.com/codeboten/ochoneycomb/pkg/event"
	"github.com/codeboten/ochoneycomb/pkg/span"
)

var ErrInvalidSampleFraction = errors.New("sample fraction must be between 0 and 1")

var (
	receivedSpans gm.Counter
	filteredSpans gm.Counter
	sentEvents    gm.Counter
	emitErrors    gm.Counter
	emitLatency   gm.Histogram
)

func init() {
	receivedSpans = gm.GetOrRegisterCounter("exporter.spans.received", gm.DefaultRegistry)
	filteredSpans = gm.GetOrRegisterCounter("exporter.spans.filtered", gm.DefaultRegistry)
	sentEvents = gm.GetOrRegisterCounter("exporter.events.sent", gm.DefaultRegistry)
	emitErrors = gm.GetOrRegisterCounter("exporter.emit.errors", gm.DefaultRegistry)
	emitLatency = reporting.NewHistogram()
	_ = gm.Register("exporter.emit.latency", emitLatency)
}

type Option func(*Exporter)

// WithServiceName adds a service_name field to every event. An empty name
// is treated as unset and no field is added.
func WithServiceName(name string) Option {
	return func(e *Exporter) {
		e.serviceName = name
	}
}

// WithSampleFraction records the probability with which spans were kept
// upstream. Events carry its reciprocal as their sample rate. Zero means unset.
// The rate is sent as a whole "1 in N" count, so New rejects fractions outside
// [0,1] with ErrInvalidSampleFraction instead of passing them through.
func WithSampleFraction(fraction float64) Option {
	return func(e *Exporter) {
		e.sampleFraction = fraction
	}
}

func WithTransport(factory TransportFactory) Option {
	return func(e *Exporter) {
		e.transportFactory = factory
	}
}

func WithFilter(f filter.Filter) Option {
	return func(e *Exporter) {
		e.filter = f
	}
}

// WithField adds a field to the event template. Template fields are written
// before the span fields, so a span field of the same name replaces them.
func WithField(key string, value event.Value) Option {
	return func(e *Exporter) {
		e.templateFields = append(e.templateFields, templateField{key, value})
	}
}

type templateField struct {
	key   string
	value event.Value
}

type Exporter struct {
	conn             client.Client
	builder          *event.Builder
	transport        Transport
	transportFactory TransportFactory
	filter           filter.Filter
	serviceName      string
	sampleFraction   float64
	templateFields   []templateField
}

// New binds an exporter to an established client connection. The connection
// is shared by every event the exporter produces.
func New(conn client.Client, opts ...Option) (*Exporter, error) {
	if conn == nil {
		return nil, fmt.Errorf("client connection is required")
	}
	e := &Exporter{
		conn:             conn,
		transportFactory: NewSyncTransport,
	}
	for _, opt := range opts {
		opt(e)
	}
	if math.IsNaN(e.sampleFraction) || e.sampleFraction < 0 || e.sampleFraction > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleFraction, e.sampleFraction)
	}

	e.builder = event.NewBuilder(conn)
	for _, f := range e.templateFields {
		e.builder.AddField(f.key, f.value)
	}
	e.transport = e.transportFactory(e)

	log.WithFields(log.Fields{
		"client":          conn.Name(),
		"service_name":    e.serviceName,
		"sample_fraction": e.sampleFraction,
	}).Info("created span exporter")
	return e, nil
}

// SampleRate is the rate attached to every event: the rounded reciprocal of
// the sample fraction, or 1 when no fraction is set.
func (e *Exporter) SampleRate() uint {
	if e.sampleFraction == 0 {
		return 1
	}
	return uint(math.Round(1 / e.sampleFraction))
}

// Emit sends one event per span, in order. The first span that cannot be
// converted or sent aborts the rest of the batch.
func (e *Exporter) Emit(spans []*span.Record) error {
	if len(spans) == 0 {
		return nil
	}
	before := time.Now()
	defer func() {
		emitLatency.Update(time.Since(before).Milliseconds())
	}()

	log.Debugf("emitting %d spans", len(spans))
	for i, rec := range spans {
		if rec == nil {
			continue
		}
		receivedSpans.Inc(1)
		if e.filter != nil && !e.filter.MatchSpan(rec.Name, rec.AttributeTags()) {
			filteredSpans.Inc(1)
			continue
		}
		if err := e.emitSpan(rec); err != nil {
			emitErrors.Inc(1)
			log.WithFields(log.Fields{
				"span_id": rec.SpanID,
				"index":   i,
				"error":   err,
			}).Debug("aborting span batch")
			return err
		}
		sentEvents.Inc(1)
	}
	return nil
}

func (e *Exporter) emitSpan(rec *span.Record) error {
	ev := e.builder.NewEvent()

	fields, err := MapFields(rec)
	if err != nil {
		return err
	}
	ev.Add(fields)

	createdAt, err := span.ParseTime(rec.StartTime)
	if err != nil {
		return fmt.Errorf("span %s start time: %w", rec.SpanID, err)
	}
	ev.CreatedAt = createdAt

	for _, attr := range rec.Attributes {
		if e.filter != nil && !e.filter.MatchAttribute(attr.Key) {
			continue
		}
		ev.AddField(attr.Key, attr.Value)
	}

	if rec.Status != nil && rec.Status.Code != 0 {
		ev.AddField(FieldStatusCode, event.Int(int64(rec.Status.Code)))
	}
	if rec.Status != nil && rec.Status.Message != "" {
		ev.AddField(FieldStatusDescription, event.String(rec.Status.Message))
	}

	if e.sampleFraction != 0 {
		ev.SampleRate = e.SampleRate()
	}

	if e.serviceName != "" {
		ev.AddField(FieldServiceName, event.String(e.serviceName))
	}

	if err := ev.Send(); err != nil {
		return fmt.Errorf("error sending span %s: %w", rec.SpanID, err)
	}
	return nil
}

// Export hands the batch to the configured transport.
func (e *Exporter) Export(spans []*span.Record) error {
	return e.transport.Export(spans)
}

// Flush pushes spans held by the transport and any events buffered by the
// client.
func (e *Exporter) Flush(ctx context.Context) error {
	if err := e.transport.Flush(ctx); err != nil {
		return err
	}
	return e.conn.Flush()
}

// Shutdown stops the transport, draining queued spans, and flushes the
// client. The client itself stays open and belongs to the caller.
func (e *Exporter) Shutdown(ctx context.Context) error {
	stopErr := e.transport.Stop(ctx)
	flushErr := e.conn.Flush()
	return errors.Join(stopErr, flushErr)
}
