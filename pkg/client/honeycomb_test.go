// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"testing"
	"time"

	"github.com/honeycombio/libhoney-go/transmission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeboten/ochoneycomb/pkg/event"
)

func newMockHoneycomb(t *testing.T) (Client, *transmission.MockSender) {
	mock := &transmission.MockSender{}
	c, err := NewHoneycombClient(HoneycombConfig{
		WriteKey:     "test-key",
		Dataset:      "test-dataset",
		Transmission: mock,
	})
	require.NoError(t, err)
	return c, mock
}

func TestHoneycombClientSend(t *testing.T) {
	c, mock := newMockHoneycomb(t)
	defer c.Close()

	created := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := event.NewBuilder(c).NewEvent()
	ev.AddField("name", event.String("span1"))
	ev.AddField("duration_ms", event.Int(1000))
	ev.AddField("annotations", event.Annotations([]event.Annotation{{Timestamp: "t1", Value: "A"}}))
	ev.CreatedAt = created
	ev.SampleRate = 4

	require.NoError(t, ev.Send())

	sent := mock.Events()
	require.Len(t, sent, 1)
	assert.Equal(t, "span1", sent[0].Data["name"])
	assert.Equal(t, int64(1000), sent[0].Data["duration_ms"])
	assert.Equal(t, []map[string]interface{}{{"timestamp": "t1", "value": "A"}}, sent[0].Data["annotations"])
	assert.Equal(t, uint(4), sent[0].SampleRate)
	assert.True(t, created.Equal(sent[0].Timestamp))
	assert.Equal(t, "test-dataset", sent[0].Dataset)
}

func TestHoneycombClientDefaultsSampleRate(t *testing.T) {
	c, mock := newMockHoneycomb(t)
	defer c.Close()

	ev := &event.Event{}
	ev.AddField("name", event.String("x"))
	require.NoError(t, c.Send(ev))

	require.Len(t, mock.Events(), 1)
	assert.Equal(t, uint(1), mock.Events()[0].SampleRate)
}

func TestHoneycombClientRejectsEmptyEvent(t *testing.T) {
	c, mock := newMockHoneycomb(t)
	defer c.Close()

	assert.Error(t, c.Send(&event.Event{}))
	assert.Empty(t, mock.Events())
}

func TestTransmissionByName(t *testing.T) {
	var buf bytes.Buffer

	tx, err := TransmissionByName("", &buf)
	assert.NoError(t, err)
	assert.Nil(t, tx)

	tx, err = TransmissionByName(TransmissionStdout, &buf)
	assert.NoError(t, err)
	assert.IsType(t, &transmission.WriterSender{}, tx)

	tx, err = TransmissionByName(TransmissionDiscard, &buf)
	assert.NoError(t, err)
	assert.NotNil(t, tx)

	_, err = TransmissionByName("carrier-pigeon", &buf)
	assert.Error(t, err)
}
