// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package event holds the outgoing vendor event model: a typed, ordered field
// bag plus the out-of-band creation time and sample rate.
package event

import (
	"errors"
	"time"
)

var ErrNoSender = errors.New("event has no sender")

// Sender delivers finished events.
type Sender interface {
	Send(ev *Event) error
}

// Event is one outgoing event. Fields added later overwrite earlier ones with
// the same name, so the order of AddField calls decides collisions.
type Event struct {
	Fields

	CreatedAt  time.Time
	SampleRate uint

	sender Sender
}

func (e *Event) AddField(key string, value Value) {
	e.Set(key, value)
}

// Add sets every field of fields in order.
func (e *Event) Add(fields *Fields) {
	e.Merge(fields)
}

// Send hands the event to the sender of the builder that created it.
func (e *Event) Send() error {
	if e.sender == nil {
		return ErrNoSender
	}
	return e.sender.Send(e)
}
