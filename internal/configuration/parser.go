// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package configuration

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// FromFile loads the configuration from a given file
func FromFile(filename string) (*Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration file: %w", err)
	}
	return FromYAML(contents)
}

// FromYAML loads the configuration from a blob of YAML.
func FromYAML(contents []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv fills an empty write key and dataset from the environment.
func (cfg *Config) ApplyEnv() {
	cfg.WriteKey = GetStringValue(cfg.WriteKey, os.Getenv(WriteKeyEnv))
	cfg.Dataset = GetStringValue(cfg.Dataset, os.Getenv(DatasetEnv))
}

// Validate checks the settings that cannot be defaulted.
func (cfg *Config) Validate() error {
	var errs []error
	if !cfg.TestMode {
		if cfg.WriteKey == "" {
			errs = append(errs, fmt.Errorf("writeKey or %s is required", WriteKeyEnv))
		}
		if cfg.Dataset == "" {
			errs = append(errs, fmt.Errorf("dataset or %s is required", DatasetEnv))
		}
	}
	if cfg.SampleFraction < 0 || cfg.SampleFraction > 1 {
		errs = append(errs, fmt.Errorf("sampleFraction must be between 0 and 1: %v", cfg.SampleFraction))
	}
	return errors.Join(errs...)
}
