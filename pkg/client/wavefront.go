// Copyright 2018-2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/wavefronthq/wavefront-sdk-go/senders"

	"github.com/codeboten/ochoneycomb/pkg/event"
	"github.com/codeboten/ochoneycomb/pkg/span"
)

const (
	defaultApplication = "ochoneycomb"
	defaultService     = "unknown"
	defaultSource      = "ochoneycomb"
)

// fields consumed by the span line itself rather than emitted as tags
var reservedFields = map[string]bool{
	"name":            true,
	"trace.trace_id":  true,
	"trace.span_id":   true,
	"trace.parent_id": true,
	"duration_ms":     true,
	"annotations":     true,
	"service_name":    true,
}

// Configuration options for mirroring events to Wavefront as spans
type WavefrontConfig struct {
	// The Wavefront URL of the form https://YOUR_INSTANCE.wavefront.com. Only required for direct ingestion.
	Server string `yaml:"server"`

	// The Wavefront API token with direct data ingestion permission. Only required for direct ingestion.
	Token string `yaml:"token"`

	// The Wavefront proxy address of the form wavefront-proxy:30000.
	ProxyAddress string `yaml:"proxyAddress"`

	// The source reported with every span. Defaults to ochoneycomb.
	Source string `yaml:"source"`

	// The application tag reported with every span. Defaults to ochoneycomb.
	Application string `yaml:"application"`

	BatchSize     int `yaml:"batchSize"`
	MaxBufferSize int `yaml:"maxBufferSize"`

	ErrorLogPercent float32 `yaml:"errorLogPercent"`
}

func (cfg WavefrontConfig) Enabled() bool {
	return cfg.Server != "" || cfg.ProxyAddress != ""
}

// NewWavefrontSender creates a proxy sender when a proxy address is set and a
// direct ingestion sender otherwise.
func NewWavefrontSender(cfg WavefrontConfig) (senders.Sender, error) {
	if cfg.ProxyAddress != "" {
		s := strings.Split(cfg.ProxyAddress, ":")
		if len(s) != 2 {
			return nil, fmt.Errorf("error parsing proxy address: %s", cfg.ProxyAddress)
		}
		host, portStr := s[0], s[1]
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing proxy port: %s", err.Error())
		}
		sender, err := senders.NewProxySender(&senders.ProxyConfiguration{
			Host:        host,
			MetricsPort: port,
			TracingPort: port,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating proxy sender: %s", err.Error())
		}
		return sender, nil
	}
	if cfg.Server != "" {
		if len(cfg.Token) == 0 {
			return nil, fmt.Errorf("token missing for Wavefront client")
		}
		sender, err := senders.NewDirectSender(&senders.DirectConfiguration{
			Server:        cfg.Server,
			Token:         cfg.Token,
			BatchSize:     cfg.BatchSize,
			MaxBufferSize: cfg.MaxBufferSize,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating direct sender: %s", err.Error())
		}
		return sender, nil
	}
	return nil, fmt.Errorf("proxyAddress or server property required for the Wavefront client")
}

type wavefrontClient struct {
	sender      senders.Sender
	source      string
	application string
	errorLog    errorLogger
	counters    clientCounters
}

// NewWavefrontClient mirrors events to Wavefront as spans through sender.
func NewWavefrontClient(sender senders.Sender, cfg WavefrontConfig) Client {
	return &wavefrontClient{
		sender:      sender,
		source:      getDefault(cfg.Source, defaultSource),
		application: getDefault(cfg.Application, defaultApplication),
		errorLog:    newErrorLogger(cfg.ErrorLogPercent),
		counters:    newClientCounters("wavefront"),
	}
}

func (w *wavefrontClient) Name() string {
	return "wavefront_client"
}

func (w *wavefrontClient) Send(ev *event.Event) error {
	name := stringField(ev, "name")
	traceID := uuidFormat(stringField(ev, "trace.trace_id"))
	spanID := uuidFormat(stringField(ev, "trace.span_id"))

	var parents []string
	if parent := stringField(ev, "trace.parent_id"); parent != "" {
		parents = []string{uuidFormat(parent)}
	}

	var duration int64
	if v, ok := ev.Get("duration_ms"); ok {
		switch v.Kind() {
		case event.KindInt:
			duration = v.AsInt()
		case event.KindFloat:
			duration = int64(v.AsFloat())
		}
	}

	tags := []senders.SpanTag{
		{Key: "application", Value: w.application},
		{Key: "service", Value: getDefault(stringField(ev, "service_name"), defaultService)},
	}
	ev.Each(func(key string, value event.Value) {
		if reservedFields[key] {
			return
		}
		if s := value.String(); s != "" {
			tags = append(tags, senders.SpanTag{Key: key, Value: s})
		}
	})
	if ev.SampleRate > 1 {
		tags = append(tags, senders.SpanTag{Key: "sample_rate", Value: strconv.FormatUint(uint64(ev.SampleRate), 10)})
	}

	err := w.sender.SendSpan(name, ev.CreatedAt.UnixMilli(), duration, w.source, traceID, spanID,
		parents, nil, tags, spanLogs(ev))
	if err != nil {
		w.counters.errors.Inc(1)
		w.errorLog.logVerboseError(log.Fields{
			"name":  name,
			"error": err,
		}, "error sending span")
		return fmt.Errorf("error sending span to wavefront: %w", err)
	}
	w.counters.sent.Inc(1)
	return nil
}

func spanLogs(ev *event.Event) []senders.SpanLog {
	v, ok := ev.Get("annotations")
	if !ok || v.Kind() != event.KindAnnotations {
		return nil
	}
	logs := make([]senders.SpanLog, 0, len(v.AsAnnotations()))
	for _, a := range v.AsAnnotations() {
		ts, err := span.Microseconds(a.Timestamp)
		if err != nil {
			ts = ev.CreatedAt.UnixMicro()
		}
		logs = append(logs, senders.SpanLog{
			Timestamp: ts,
			Fields:    map[string]string{"annotation": a.Value},
		})
	}
	return logs
}

// uuidFormat renders a hex id of up to 32 digits in the 8-4-4-4-12 form the
// Wavefront span format requires, left-padding shorter ids with zeros.
// Anything else is returned as is.
func uuidFormat(id string) string {
	if id == "" || len(id) > 32 {
		return id
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')) {
			return id
		}
	}
	hex := strings.Repeat("0", 32-len(id)) + id
	return hex[0:8] + "-" + hex[8:12] + "-" + hex[12:16] + "-" + hex[16:20] + "-" + hex[20:32]
}

func stringField(ev *event.Event, key string) string {
	if v, ok := ev.Get(key); ok {
		return v.String()
	}
	return ""
}

func getDefault(val, defaultVal string) string {
	if val == "" {
		return defaultVal
	}
	return val
}

func (w *wavefrontClient) Flush() error {
	return w.sender.Flush()
}

func (w *wavefrontClient) Close() {
	w.sender.Close()
}
