package client

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/pkg/event"
)

// TestClient records events in memory instead of delivering them.
type TestClient struct {
	// SendErr is returned from every Send when set.
	SendErr error

	mutex   sync.Mutex
	events  []*event.Event
	flushes int
	closed  bool
}

func NewTestClient() *TestClient {
	return &TestClient{}
}

func (t *TestClient) Name() string {
	return "test_client"
}

func (t *TestClient) Send(ev *event.Event) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.SendErr != nil {
		return t.SendErr
	}
	t.events = append(t.events, ev)
	log.WithFields(log.Fields(ev.Map())).Debug("test client received event")
	return nil
}

func (t *TestClient) Events() []*event.Event {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	out := make([]*event.Event, len(t.events))
	copy(out, t.events)
	return out
}

func (t *TestClient) Flushes() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.flushes
}

func (t *TestClient) Closed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.closed
}

func (t *TestClient) Flush() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.flushes++
	return nil
}

func (t *TestClient) Close() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.closed = true
}
