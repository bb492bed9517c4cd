// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/codeboten/ochoneycomb/pkg/event"
	"github.com/codeboten/ochoneycomb/pkg/span"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Status code recorded for spans that ended with an error.
const statusCodeUnknown = 2

// SpanExporter plugs an Exporter into an OpenTelemetry tracer provider.
type SpanExporter struct {
	exporter *Exporter
}

var _ sdktrace.SpanExporter = (*SpanExporter)(nil)

func NewSpanExporter(e *Exporter) *SpanExporter {
	return &SpanExporter{exporter: e}
}

func (s *SpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(spans) == 0 {
		return nil
	}
	return s.exporter.Export(ConvertSpans(spans))
}

func (s *SpanExporter) Shutdown(ctx context.Context) error {
	return s.exporter.Shutdown(ctx)
}

// ConvertSpans turns OpenTelemetry spans into span records.
func ConvertSpans(spans []sdktrace.ReadOnlySpan) []*span.Record {
	records := make([]*span.Record, 0, len(spans))
	for _, s := range spans {
		records = append(records, convertSpan(s))
	}
	return records
}

func convertSpan(s sdktrace.ReadOnlySpan) *span.Record {
	sc := s.SpanContext()
	rec := &span.Record{
		TraceID:   sc.TraceID().String(),
		SpanID:    sc.SpanID().String(),
		Name:      s.Name(),
		StartTime: span.FormatTime(s.StartTime()),
		EndTime:   span.FormatTime(s.EndTime()),
	}
	if parent := s.Parent(); parent.SpanID().IsValid() {
		rec.ParentSpanID = parent.SpanID().String()
	}
	rec.Attributes = convertAttributes(s.Attributes())

	switch status := s.Status(); status.Code {
	case codes.Error:
		rec.Status = &span.Status{Code: statusCodeUnknown, Message: status.Description}
	case codes.Ok:
		rec.Status = &span.Status{}
	}

	for _, ev := range s.Events() {
		rec.TimeEvents = append(rec.TimeEvents, span.TimeEvent{
			Timestamp: span.FormatTime(ev.Time),
			Annotation: &span.Annotation{
				Description: ev.Name,
				Attributes:  convertAttributes(ev.Attributes),
			},
		})
	}
	return rec
}

func convertAttributes(kvs []attribute.KeyValue) []span.Attribute {
	if len(kvs) == 0 {
		return nil
	}
	attrs := make([]span.Attribute, 0, len(kvs))
	for _, kv := range kvs {
		attrs = append(attrs, span.Attribute{Key: string(kv.Key), Value: attributeValue(kv.Value)})
	}
	return attrs
}

func attributeValue(v attribute.Value) event.Value {
	switch v.Type() {
	case attribute.BOOL:
		return event.Bool(v.AsBool())
	case attribute.INT64:
		return event.Int(v.AsInt64())
	case attribute.FLOAT64:
		return event.Float(v.AsFloat64())
	case attribute.STRING:
		return event.String(v.AsString())
	// slices are serialized as a JSON list string
	case attribute.BOOLSLICE, attribute.INT64SLICE, attribute.FLOAT64SLICE, attribute.STRINGSLICE:
		data, err := json.Marshal(v.AsInterface())
		if err != nil {
			return event.String(v.Emit())
		}
		return event.String(string(data))
	default:
		return event.String(v.Emit())
	}
}
