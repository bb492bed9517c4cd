// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeboten/ochoneycomb/pkg/span"
)

type recordingEmitter struct {
	mutex   sync.Mutex
	batches [][]*span.Record
	err     error
}

func (r *recordingEmitter) Emit(spans []*span.Record) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	batch := make([]*span.Record, len(spans))
	copy(batch, spans)
	r.batches = append(r.batches, batch)
	return r.err
}

func (r *recordingEmitter) sizes() []int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var sizes []int
	for _, b := range r.batches {
		sizes = append(sizes, len(b))
	}
	return sizes
}

func spans(n int) []*span.Record {
	out := make([]*span.Record, n)
	for i := range out {
		out[i] = rootSpan()
	}
	return out
}

func TestSyncTransport(t *testing.T) {
	emitter := &recordingEmitter{}
	tr := NewSyncTransport(emitter)

	require.NoError(t, tr.Export(spans(3)))
	assert.Equal(t, []int{3}, emitter.sizes())

	emitter.err = errors.New("boom")
	assert.Error(t, tr.Export(spans(1)))
	assert.NoError(t, tr.Flush(context.Background()))
	assert.NoError(t, tr.Stop(context.Background()))
}

func TestAsyncTransportBatches(t *testing.T) {
	emitter := &recordingEmitter{}
	tr := NewAsyncTransport(AsyncConfig{MaxBatchSize: 2, WaitPeriod: time.Hour})(emitter)

	require.NoError(t, tr.Export(spans(5)))
	require.NoError(t, tr.Stop(context.Background()))

	assert.Equal(t, []int{2, 2, 1}, emitter.sizes())
	assert.ErrorIs(t, tr.Export(spans(1)), ErrTransportStopped)
	assert.NoError(t, tr.Stop(context.Background()))
}

func TestAsyncTransportExportDuringStop(t *testing.T) {
	emitter := &recordingEmitter{}
	tr := NewAsyncTransport(AsyncConfig{WaitPeriod: time.Hour, GracePeriod: time.Minute, QueueSize: 1000})(emitter)

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if tr.Export(spans(1)) == nil {
					accepted.Add(1)
				}
			}
		}()
	}
	require.NoError(t, tr.Stop(context.Background()))
	wg.Wait()

	emitted := 0
	for _, size := range emitter.sizes() {
		emitted += size
	}
	assert.Equal(t, int(accepted.Load()), emitted)
}

func TestAsyncTransportFlush(t *testing.T) {
	emitter := &recordingEmitter{}
	tr := NewAsyncTransport(AsyncConfig{WaitPeriod: time.Hour})(emitter)
	defer tr.Stop(context.Background())

	require.NoError(t, tr.Export(spans(3)))
	require.NoError(t, tr.Flush(context.Background()))
	assert.Equal(t, []int{3}, emitter.sizes())
}

func TestAsyncTransportWaitPeriod(t *testing.T) {
	emitter := &recordingEmitter{}
	tr := NewAsyncTransport(AsyncConfig{WaitPeriod: 10 * time.Millisecond})(emitter)
	defer tr.Stop(context.Background())

	require.NoError(t, tr.Export(spans(1)))
	assert.Eventually(t, func() bool {
		return len(emitter.sizes()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAsyncTransportEmitErrorKeepsRunning(t *testing.T) {
	emitter := &recordingEmitter{err: errors.New("boom")}
	tr := NewAsyncTransport(AsyncConfig{MaxBatchSize: 1, WaitPeriod: time.Hour})(emitter)

	require.NoError(t, tr.Export(spans(2)))
	require.NoError(t, tr.Stop(context.Background()))
	assert.Equal(t, []int{1, 1}, emitter.sizes())
}

func TestAsyncConfigDefaults(t *testing.T) {
	cfg := AsyncConfig{}.withDefaults()
	assert.Equal(t, DefaultMaxBatchSize, cfg.MaxBatchSize)
	assert.Equal(t, DefaultWaitPeriod, cfg.WaitPeriod)
	assert.Equal(t, DefaultGracePeriod, cfg.GracePeriod)
	assert.Equal(t, DefaultQueueSize, cfg.QueueSize)
}

func TestTransportByName(t *testing.T) {
	for _, name := range []string{"", TransportSync} {
		factory, err := TransportByName(name, AsyncConfig{})
		require.NoError(t, err)
		assert.IsType(t, &SyncTransport{}, factory(&recordingEmitter{}))
	}

	factory, err := TransportByName(TransportAsync, AsyncConfig{})
	require.NoError(t, err)
	tr := factory(&recordingEmitter{})
	assert.IsType(t, &AsyncTransport{}, tr)
	assert.NoError(t, tr.Stop(context.Background()))

	_, err = TransportByName("carrier-pigeon", AsyncConfig{})
	assert.Error(t, err)
}

func TestExporterWithAsyncTransport(t *testing.T) {
	e, conn := newTestExporter(t, WithTransport(NewAsyncTransport(AsyncConfig{WaitPeriod: time.Hour})))

	require.NoError(t, e.Export(spans(4)))
	require.NoError(t, e.Shutdown(context.Background()))
	assert.Len(t, conn.Events(), 4)
}
