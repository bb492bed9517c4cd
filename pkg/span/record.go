// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package span defines the finished span records handed to the exporter by a
// tracing pipeline.
package span

import (
	"github.com/codeboten/ochoneycomb/pkg/event"
)

// Record is one finished span. Records are owned by the caller and never
// modified by the exporter.
type Record struct {
	TraceID string `json:"trace_id"`
	SpanID  string `json:"span_id"`

	// ParentSpanID is empty for root spans.
	ParentSpanID string `json:"parent_span_id,omitempty"`

	Name string `json:"name"`

	// StartTime and EndTime use TimeLayout.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	Attributes []Attribute `json:"attributes,omitempty"`
	Status     *Status     `json:"status,omitempty"`
	TimeEvents []TimeEvent `json:"time_events,omitempty"`
}

type Attribute struct {
	Key   string      `json:"key"`
	Value event.Value `json:"value"`
}

type Status struct {
	Code    int32  `json:"code"`
	Message string `json:"message,omitempty"`
}

// TimeEvent is a timestamped occurrence during the span. Only time events
// carrying an annotation are exported.
type TimeEvent struct {
	Timestamp  string      `json:"timestamp"`
	Annotation *Annotation `json:"annotation,omitempty"`
}

type Annotation struct {
	Description string      `json:"description"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

func (r *Record) HasParent() bool {
	return r.ParentSpanID != ""
}

// AttributeTags flattens the attributes into a tag map for filtering.
func (r *Record) AttributeTags() map[string]string {
	tags := make(map[string]string, len(r.Attributes))
	for _, a := range r.Attributes {
		tags[a.Key] = a.Value.String()
	}
	return tags
}
