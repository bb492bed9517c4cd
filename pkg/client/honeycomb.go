// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"
	"io"

	libhoney "github.com/honeycombio/libhoney-go"
	"github.com/honeycombio/libhoney-go/transmission"
	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/pkg/event"
)

const (
	TransmissionHoneycomb = "honeycomb"
	TransmissionStdout    = "stdout"
	TransmissionDiscard   = "discard"
)

// Configuration options for the Honeycomb client
type HoneycombConfig struct {
	// The write key identifying the destination account.
	WriteKey string

	// The dataset events are written to.
	Dataset string

	// Defaults to the public Honeycomb API.
	APIHost string

	// Overrides the batching network transmission. Nil uses the default.
	Transmission transmission.Sender

	// Routes libhoney's internal logging to logrus.
	Debug bool

	// Fraction of delivery errors logged when not at debug level.
	ErrorLogPercent float32
}

// TransmissionByName returns the transmission for a configured name. The
// default network transmission is returned as nil.
func TransmissionByName(name string, w io.Writer) (transmission.Sender, error) {
	switch name {
	case "", TransmissionHoneycomb:
		return nil, nil
	case TransmissionStdout:
		return &transmission.WriterSender{W: w}, nil
	case TransmissionDiscard:
		return &transmission.WriterSender{W: io.Discard}, nil
	default:
		return nil, fmt.Errorf("transmission not recognized: %s", name)
	}
}

type honeycombClient struct {
	client   *libhoney.Client
	errorLog errorLogger
	counters clientCounters
}

func NewHoneycombClient(cfg HoneycombConfig) (Client, error) {
	conf := libhoney.ClientConfig{
		APIKey:       cfg.WriteKey,
		Dataset:      cfg.Dataset,
		APIHost:      cfg.APIHost,
		Transmission: cfg.Transmission,
	}
	if cfg.Debug {
		conf.Logger = log.StandardLogger()
	}
	c, err := libhoney.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("error creating honeycomb client: %w", err)
	}
	log.WithField("dataset", cfg.Dataset).Info("created honeycomb client")

	hc := &honeycombClient{
		client:   c,
		errorLog: newErrorLogger(cfg.ErrorLogPercent),
		counters: newClientCounters(TransmissionHoneycomb),
	}
	if responses := c.TxResponses(); responses != nil {
		go hc.readResponses(responses)
	}
	return hc, nil
}

func (h *honeycombClient) Name() string {
	return "honeycomb_client"
}

// Send copies the event onto a libhoney event. The event was already sampled
// upstream, so it is sent presampled with its sample rate attached.
func (h *honeycombClient) Send(ev *event.Event) error {
	hev := h.client.NewEvent()
	ev.Each(func(key string, value event.Value) {
		hev.AddField(key, value.Interface())
	})
	if !ev.CreatedAt.IsZero() {
		hev.Timestamp = ev.CreatedAt
	}
	hev.SampleRate = ev.SampleRate
	if hev.SampleRate == 0 {
		hev.SampleRate = 1
	}
	if err := hev.SendPresampled(); err != nil {
		h.counters.errors.Inc(1)
		return fmt.Errorf("error sending event to honeycomb: %w", err)
	}
	return nil
}

func (h *honeycombClient) readResponses(responses chan transmission.Response) {
	for r := range responses {
		if r.Err != nil || r.StatusCode >= 300 {
			h.counters.errors.Inc(1)
			h.errorLog.logVerboseError(log.Fields{
				"status": r.StatusCode,
				"error":  r.Err,
				"body":   string(r.Body),
			}, "error delivering event")
			continue
		}
		h.counters.sent.Inc(1)
	}
}

func (h *honeycombClient) Flush() error {
	h.client.Flush()
	return nil
}

func (h *honeycombClient) Close() {
	h.client.Close()
}
