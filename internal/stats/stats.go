// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package stats provides internal metrics on the health of the span exporter
package stats

import (
	"sync"
	"time"

	gm "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/wavefronthq/go-metrics-wavefront/reporting"
	"github.com/wavefronthq/wavefront-sdk-go/application"
	"github.com/wavefronthq/wavefront-sdk-go/senders"
)

// Snapshot returns the current value of every counter and gauge in the
// registry, and the sample count of every histogram.
func Snapshot(registry gm.Registry) map[string]int64 {
	values := make(map[string]int64)
	registry.Each(func(name string, i interface{}) {
		switch metric := i.(type) {
		case gm.Counter:
			values[name] = metric.Count()
		case gm.Gauge:
			values[name] = metric.Value()
		case gm.Histogram:
			values[name+".count"] = metric.Count()
		}
	})
	return values
}

// StatusLogger periodically logs a summary of the registry. Span volume can be
// large, so status is logged instead of individual events.
type StatusLogger struct {
	registry gm.Registry
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewStatusLogger(registry gm.Registry, interval time.Duration) *StatusLogger {
	return &StatusLogger{
		registry: registry,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *StatusLogger) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.LogStatus()
			case <-s.stop:
				log.Info("stopping status logger")
				s.LogStatus()
				return
			}
		}
	}()
}

func (s *StatusLogger) Stop() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// LogStatus logs the non-zero values of the registry.
func (s *StatusLogger) LogStatus() {
	fields := log.Fields{}
	for name, value := range Snapshot(s.registry) {
		if value != 0 {
			fields[name] = value
		}
	}
	if len(fields) > 0 {
		log.WithFields(fields).Info("spans processed")
	}
}

type ReporterConfig struct {
	Application string
	Service     string
	Source      string
	Prefix      string
	Interval    time.Duration
}

// NewReporter reports the default registry to Wavefront through sender. The
// reporter closes the sender when it is closed.
func NewReporter(sender senders.Sender, cfg ReporterConfig) reporting.WavefrontMetricsReporter {
	log.WithFields(log.Fields{
		"prefix":   cfg.Prefix,
		"interval": cfg.Interval,
	}).Info("reporting internal stats to wavefront")

	return reporting.NewReporter(
		sender,
		application.New(cfg.Application, cfg.Service),
		reporting.Source(cfg.Source),
		reporting.Interval(cfg.Interval),
		reporting.Prefix(cfg.Prefix),
		reporting.LogErrors(log.IsLevelEnabled(log.DebugLevel)),
	)
}
