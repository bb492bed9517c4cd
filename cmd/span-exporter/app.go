// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	gm "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/internal/configuration"
	"github.com/codeboten/ochoneycomb/internal/filter"
	"github.com/codeboten/ochoneycomb/internal/options"
	"github.com/codeboten/ochoneycomb/internal/stats"
	"github.com/codeboten/ochoneycomb/pkg/client"
	"github.com/codeboten/ochoneycomb/pkg/event"
	"github.com/codeboten/ochoneycomb/pkg/exporter"
	"github.com/codeboten/ochoneycomb/pkg/span"
)

const (
	inputBatchSize  = 100
	shutdownTimeout = 30 * time.Second
	statsService    = "span-exporter"
)

type app struct {
	opts     *options.RunOptions
	cfg      *configuration.Config
	conn     client.Client
	exporter *exporter.Exporter
	status   *stats.StatusLogger
	closers  []func()
}

func newApp(opts *options.RunOptions, cfg *configuration.Config, stdout io.Writer) (*app, error) {
	a := &app{opts: opts, cfg: cfg}

	conn, err := a.createClient(stdout)
	if err != nil {
		return nil, err
	}
	a.conn = conn
	a.closers = append(a.closers, conn.Close)

	exporterOpts, err := a.exporterOptions()
	if err != nil {
		a.close()
		return nil, err
	}
	e, err := exporter.New(conn, exporterOpts...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.exporter = e

	a.status = stats.NewStatusLogger(gm.DefaultRegistry, cfg.StatsInterval())
	a.status.Start()
	a.closers = append(a.closers, a.status.Stop)

	if cfg.Wavefront.Enabled() && !cfg.TestMode {
		sender, err := client.NewWavefrontSender(cfg.Wavefront)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("error creating stats sender: %w", err)
		}
		reporter := stats.NewReporter(sender, stats.ReporterConfig{
			Application: configuration.GetStringValue(cfg.Wavefront.Application, "ochoneycomb"),
			Service:     statsService,
			Source:      configuration.GetStringValue(cfg.Wavefront.Source, "ochoneycomb"),
			Prefix:      cfg.StatsPrefix(),
			Interval:    cfg.StatsInterval(),
		})
		a.closers = append(a.closers, reporter.Close)
	}
	return a, nil
}

func (a *app) createClient(stdout io.Writer) (client.Client, error) {
	if a.cfg.TestMode {
		log.Info("test mode enabled, events are recorded in memory")
		return client.NewTestClient(), nil
	}

	tx, err := client.TransmissionByName(a.cfg.Transmission, stdout)
	if err != nil {
		return nil, err
	}
	honeycomb, err := client.NewHoneycombClient(client.HoneycombConfig{
		WriteKey:        a.cfg.WriteKey,
		Dataset:         a.cfg.Dataset,
		APIHost:         a.cfg.APIHost,
		Transmission:    tx,
		Debug:           log.IsLevelEnabled(log.DebugLevel),
		ErrorLogPercent: a.cfg.ErrorLogPercent,
	})
	if err != nil {
		return nil, err
	}
	if !a.cfg.Wavefront.Enabled() {
		return honeycomb, nil
	}

	sender, err := client.NewWavefrontSender(a.cfg.Wavefront)
	if err != nil {
		honeycomb.Close()
		return nil, err
	}
	return client.NewMultiClient(honeycomb, client.NewWavefrontClient(sender, a.cfg.Wavefront)), nil
}

func (a *app) exporterOptions() ([]exporter.Option, error) {
	transport, err := exporter.TransportByName(a.cfg.Transport.Type, a.cfg.Transport.AsyncConfig)
	if err != nil {
		return nil, err
	}
	opts := []exporter.Option{
		exporter.WithServiceName(a.cfg.ServiceName),
		exporter.WithSampleFraction(a.cfg.SampleFraction),
		exporter.WithTransport(transport),
	}
	if f := filter.FromConfig(a.cfg.Filters); f != nil {
		opts = append(opts, exporter.WithFilter(f))
	}

	keys := make([]string, 0, len(a.cfg.Tags))
	for k := range a.cfg.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, exporter.WithField(k, event.String(a.cfg.Tags[k])))
	}
	return opts, nil
}

func (a *app) run(ctx context.Context) error {
	var err error
	if a.opts.Demo {
		err = runDemo(ctx, a.exporter)
	} else {
		err = a.exportInput(ctx)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := a.exporter.Shutdown(shutdownCtx); shutdownErr != nil {
		err = errors.Join(err, fmt.Errorf("error shutting down exporter: %w", shutdownErr))
	}
	return err
}

func (a *app) exportInput(ctx context.Context) error {
	var r io.Reader = os.Stdin
	if a.opts.Input != "-" {
		f, err := os.Open(a.opts.Input)
		if err != nil {
			return fmt.Errorf("error opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := span.NewDecoder(r)
	total := 0
	for ctx.Err() == nil {
		batch, err := dec.Batch(inputBatchSize)
		if len(batch) > 0 {
			if exportErr := a.exporter.Export(batch); exportErr != nil {
				return exportErr
			}
			total += len(batch)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		log.WithField("spans", total).Warn("interrupted before the input was fully exported")
		return nil
	}
	log.WithField("spans", total).Info("input exported")
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
