// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	gm "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/internal/options"
)

var (
	version string
	commit  string
)

func main() {
	log.SetFormatter(&log.TextFormatter{})

	opts := options.Parse()
	if opts.Version {
		fmt.Printf("version: %s\ncommit: %s\n", version, commit)
		os.Exit(0)
	}
	setLogLevel(opts.LogLevel)
	registerVersion()

	log.Info(strings.Join(os.Args, " "))
	log.Infof("span-exporter version %v", version)

	cfg, err := opts.Convert()
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(opts, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("error creating exporter: %v", err)
	}
	runErr := a.run(ctx)
	a.close()
	if runErr != nil {
		log.Errorf("error exporting spans: %v", runErr)
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func registerVersion() {
	parts := strings.Split(version, ".")
	f := 0.0
	if len(parts) == 3 {
		friendly := fmt.Sprintf("%s.%s%s", parts[0], parts[1], parts[2])
		if v, err := strconv.ParseFloat(friendly, 64); err == nil {
			f = v
		}
	}
	m := gm.GetOrRegisterGaugeFloat64("version", gm.DefaultRegistry)
	m.Update(f)
}
