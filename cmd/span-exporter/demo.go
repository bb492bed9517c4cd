// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/codeboten/ochoneycomb/pkg/exporter"
)

// time spent inside each demo span
var demoWork = time.Second

// runDemo traces two root spans, the first with two children, through an
// OpenTelemetry tracer provider exporting to e.
func runDemo(ctx context.Context, e *exporter.Exporter) error {
	// the exporter is shut down by the caller, so the provider only flushes
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter.NewSpanExporter(e)))
	tracer := tp.Tracer("github.com/codeboten/ochoneycomb/cmd/span-exporter")

	err := func() error {
		ctx1, span1 := tracer.Start(ctx, "span1")
		defer span1.End()
		if err := work(ctx1); err != nil {
			return err
		}

		if err := traced(ctx1, tracer, "span1_child1", func(s trace.Span) {
			s.AddEvent("something")
		}); err != nil {
			return err
		}
		return traced(ctx1, tracer, "span1_child2", nil)
	}()
	if err == nil {
		err = traced(ctx, tracer, "span2", nil)
	}

	if flushErr := tp.ForceFlush(context.Background()); flushErr != nil {
		log.WithField("error", flushErr).Error("error flushing demo spans")
	}
	if err != nil {
		log.WithField("error", err).Warn("demo interrupted")
		return nil
	}
	log.Info("demo spans exported")
	return nil
}

func traced(ctx context.Context, tracer trace.Tracer, name string, annotate func(trace.Span)) error {
	ctx, s := tracer.Start(ctx, name)
	defer s.End()
	if annotate != nil {
		annotate(s)
	}
	return work(ctx)
}

func work(ctx context.Context) error {
	select {
	case <-time.After(demoWork):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
