package stats

import (
	"testing"
	"time"

	gm "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/wavefronthq/go-metrics-wavefront/reporting"
)

func TestSnapshot(t *testing.T) {
	registry := gm.NewRegistry()
	gm.GetOrRegisterCounter("exporter.spans.received", registry).Inc(3)
	gm.GetOrRegisterGauge("transport.queue.size", registry).Update(7)
	h := reporting.NewHistogram()
	_ = registry.Register("exporter.emit.latency", h)
	h.Update(12)

	values := Snapshot(registry)
	assert.Equal(t, int64(3), values["exporter.spans.received"])
	assert.Equal(t, int64(7), values["transport.queue.size"])
	assert.Contains(t, values, "exporter.emit.latency.count")
}

func TestStatusLoggerStop(t *testing.T) {
	registry := gm.NewRegistry()
	gm.GetOrRegisterCounter("exporter.events.sent", registry).Inc(1)

	s := NewStatusLogger(registry, time.Millisecond)
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()
}
