// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package configuration

import (
	"time"

	"github.com/codeboten/ochoneycomb/internal/filter"
	"github.com/codeboten/ochoneycomb/pkg/client"
	"github.com/codeboten/ochoneycomb/pkg/exporter"
)

const (
	WriteKeyEnv = "HONEYCOMB_WRITEKEY"
	DatasetEnv  = "HONEYCOMB_DATASET"
)

// The main configuration struct that drives the span exporter
type Config struct {
	// The Honeycomb write key. Falls back to HONEYCOMB_WRITEKEY.
	WriteKey string `yaml:"writeKey"`

	// The Honeycomb dataset. Falls back to HONEYCOMB_DATASET.
	Dataset string `yaml:"dataset"`

	// Defaults to the public Honeycomb API.
	APIHost string `yaml:"apiHost"`

	// Added to every event as the service_name field.
	ServiceName string `yaml:"serviceName"`

	// The probability with which spans were kept upstream, between 0 and 1.
	// Defaults to 0, meaning every event carries a sample rate of 1.
	SampleFraction float64 `yaml:"sampleFraction"`

	// honeycomb, stdout or discard. Defaults to honeycomb.
	Transmission string `yaml:"transmission"`

	Transport TransportConfig `yaml:"transport"`

	// Fields added to every event.
	Tags map[string]string `yaml:"tags"`

	Filters filter.Config `yaml:"filters"`

	// Optional Wavefront destination that receives a copy of every span.
	Wavefront client.WavefrontConfig `yaml:"wavefront"`

	Stats StatsConfig `yaml:"stats"`

	// Fraction of delivery errors logged when not running at debug level.
	ErrorLogPercent float32 `yaml:"errorLogPercent"`

	// Records events in memory instead of delivering them.
	TestMode bool `yaml:"testMode"`
}

type TransportConfig struct {
	// sync or async. Defaults to sync.
	Type string `yaml:"type"`

	exporter.AsyncConfig `yaml:",inline"`
}

// Internal stats configuration
type StatsConfig struct {
	// How often internal stats are logged and reported. Defaults to 60 seconds.
	Interval time.Duration `yaml:"interval"`

	// Prefix for internal stats reported to Wavefront. Defaults to ochoneycomb.
	Prefix string `yaml:"prefix"`
}
