// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"fmt"
	"math"

	"github.com/codeboten/ochoneycomb/pkg/event"
	"github.com/codeboten/ochoneycomb/pkg/span"
)

// Event field names written for every span.
const (
	FieldTraceID           = "trace.trace_id"
	FieldName              = "name"
	FieldSpanID            = "trace.span_id"
	FieldDuration          = "duration_ms"
	FieldParentID          = "trace.parent_id"
	FieldAnnotations       = "annotations"
	FieldStatusCode        = "status_code"
	FieldStatusDescription = "status_description"
	FieldServiceName       = "service_name"
)

// MapFields converts a span record into its base event fields: the trace id,
// name, span id and duration, followed by the parent id and annotations when
// the span carries them.
func MapFields(rec *span.Record) (*event.Fields, error) {
	start, err := span.Microseconds(rec.StartTime)
	if err != nil {
		return nil, fmt.Errorf("span %s start time: %w", rec.SpanID, err)
	}
	end, err := span.Microseconds(rec.EndTime)
	if err != nil {
		return nil, fmt.Errorf("span %s end time: %w", rec.SpanID, err)
	}

	fields := event.NewFields()
	fields.Set(FieldTraceID, event.String(rec.TraceID))
	fields.Set(FieldName, event.String(rec.Name))
	fields.Set(FieldSpanID, event.String(rec.SpanID))
	fields.Set(FieldDuration, event.Int(durationMillis(start, end)))

	if rec.HasParent() {
		fields.Set(FieldParentID, event.String(rec.ParentSpanID))
	}
	if annotations := extractAnnotations(rec); len(annotations) > 0 {
		fields.Set(FieldAnnotations, event.Annotations(annotations))
	}
	return fields, nil
}

// durationMillis rounds half to even.
func durationMillis(startMicros, endMicros int64) int64 {
	return int64(math.RoundToEven(float64(endMicros-startMicros) / 1000))
}

func extractAnnotations(rec *span.Record) []event.Annotation {
	var annotations []event.Annotation
	for _, te := range rec.TimeEvents {
		if te.Annotation == nil || te.Annotation.Description == "" {
			continue
		}
		annotations = append(annotations, event.Annotation{
			Timestamp: te.Timestamp,
			Value:     te.Annotation.Description,
		})
	}
	return annotations
}
