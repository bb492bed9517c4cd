// Copyright 2018-2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package options

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/codeboten/ochoneycomb/internal/filter"
)

var (
	ErrNoInput        = errors.New("one of --input or --demo is required")
	DemoAndInputErr   = errors.New("cannot set --demo with --input")
	filterFlagsByName = map[string]string{
		"span-allow-list":     filter.SpanAllowList,
		"span-deny-list":      filter.SpanDenyList,
		"span-tag-allow-list": filter.SpanTagAllowList,
		"span-tag-deny-list":  filter.SpanTagDenyList,
		"attribute-include":   filter.AttributeInclude,
		"attribute-exclude":   filter.AttributeExclude,
	}
)

type RunOptions struct {
	Version    bool
	ConfigFile string
	LogLevel   string

	// Input is a file of JSON span records, one per line. "-" reads stdin.
	Input string

	// Demo replays a fixed set of nested spans through the OpenTelemetry bridge.
	Demo bool

	// overrides for the configuration file
	WriteKey       string
	Dataset        string
	APIHost        string
	ServiceName    string
	SampleFraction float64
	Transmission   string
	Transport      TransportType
	Tags           []string
	TestMode       bool

	filters map[string]*[]string
	fs      *pflag.FlagSet
}

func NewRunOptions() *RunOptions {
	return &RunOptions{
		Transport: SyncTransportType,
		filters:   make(map[string]*[]string),
	}
}

func (opts *RunOptions) Parse(fs *pflag.FlagSet, args []string) error {
	fs.BoolVar(&opts.Version, "version", false, "print version info and exit")
	fs.StringVar(&opts.ConfigFile, "config-file", "", "optional configuration file")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "one of info, debug or trace")
	fs.StringVar(&opts.Input, "input", "", "file of JSON span records to export, - for stdin")
	fs.BoolVar(&opts.Demo, "demo", false, "export a set of example nested spans")

	fs.StringVar(&opts.WriteKey, "write-key", "", "Honeycomb write key, overrides writeKey and HONEYCOMB_WRITEKEY")
	fs.StringVar(&opts.Dataset, "dataset", "", "Honeycomb dataset, overrides dataset and HONEYCOMB_DATASET")
	fs.StringVar(&opts.APIHost, "api-host", "", "Honeycomb API host")
	fs.StringVar(&opts.ServiceName, "service-name", "", "service_name added to every event")
	fs.Float64Var(&opts.SampleFraction, "sample-fraction", 0, "probability with which spans were sampled, between 0 and 1")
	fs.StringVar(&opts.Transmission, "transmission", "", "one of honeycomb, stdout or discard")
	fs.Var(&opts.Transport, "transport", "the transport type (sync, async)")
	fs.StringArrayVar(&opts.Tags, "tag", nil, "field added to every event, of the form key:value")
	fs.BoolVar(&opts.TestMode, "test-mode", false, "record events in memory instead of delivering them")

	for name := range filterFlagsByName {
		opts.filters[name] = fs.StringArray(name, nil, "glob filter, see "+filterFlagsByName[name]+" in the configuration file")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.fs = fs

	if opts.Version {
		return nil
	}
	return opts.validate()
}

func (opts *RunOptions) validate() error {
	if opts.Demo && opts.Input != "" {
		return DemoAndInputErr
	}
	if !opts.Demo && opts.Input == "" {
		return ErrNoInput
	}
	if opts.SampleFraction < 0 || opts.SampleFraction > 1 {
		return fmt.Errorf("--sample-fraction must be between 0 and 1: %v", opts.SampleFraction)
	}
	return nil
}

// changed reports whether a flag was set on the command line.
func (opts *RunOptions) changed(name string) bool {
	return opts.fs != nil && opts.fs.Changed(name)
}

func Parse() *RunOptions {
	opts := NewRunOptions()
	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	if err := opts.Parse(fs, os.Args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return opts
}
