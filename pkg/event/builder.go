// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package event

// Builder is a reusable event template bound to one sender.
type Builder struct {
	// SampleRate is copied onto every new event. Zero means 1.
	SampleRate uint

	fields *Fields
	sender Sender
}

func NewBuilder(sender Sender) *Builder {
	return &Builder{
		SampleRate: 1,
		fields:     NewFields(),
		sender:     sender,
	}
}

// AddField adds a field copied onto every event created afterwards.
func (b *Builder) AddField(key string, value Value) {
	b.fields.Set(key, value)
}

func (b *Builder) NewEvent() *Event {
	rate := b.SampleRate
	if rate == 0 {
		rate = 1
	}
	ev := &Event{
		SampleRate: rate,
		sender:     b.sender,
	}
	ev.Merge(b.fields)
	return ev
}
