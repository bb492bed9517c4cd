// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package options

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/internal/configuration"
	"github.com/codeboten/ochoneycomb/internal/filter"
)

// Convert loads the configuration file, if any, and applies the command line
// overrides and environment fallbacks on top of it.
func (opts *RunOptions) Convert() (*configuration.Config, error) {
	cfg := &configuration.Config{}
	if opts.ConfigFile != "" {
		var err error
		cfg, err = configuration.FromFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
	}
	if err := opts.apply(cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (opts *RunOptions) apply(cfg *configuration.Config) error {
	cfg.WriteKey = configuration.GetStringValue(opts.WriteKey, cfg.WriteKey)
	cfg.Dataset = configuration.GetStringValue(opts.Dataset, cfg.Dataset)
	cfg.APIHost = configuration.GetStringValue(opts.APIHost, cfg.APIHost)
	cfg.ServiceName = configuration.GetStringValue(opts.ServiceName, cfg.ServiceName)
	cfg.Transmission = configuration.GetStringValue(opts.Transmission, cfg.Transmission)

	if opts.changed("sample-fraction") {
		cfg.SampleFraction = opts.SampleFraction
	}
	if opts.changed("transport") {
		cfg.Transport.Type = opts.Transport.String()
	}
	if opts.TestMode {
		cfg.TestMode = true
	}

	if tags := decodeTags(opts.Tags); len(tags) > 0 {
		if cfg.Tags == nil {
			cfg.Tags = make(map[string]string, len(tags))
		}
		for k, v := range tags {
			cfg.Tags[k] = v
		}
	}

	vals := make(map[string][]string)
	for name, list := range opts.filters {
		if list != nil && len(*list) > 0 {
			vals[filterFlagsByName[name]] = *list
		}
	}
	flagFilters, err := filter.FromFlags(vals)
	if err != nil {
		return fmt.Errorf("error parsing filter flags: %w", err)
	}
	cfg.Filters = cfg.Filters.Merge(flagFilters)
	return nil
}

// Decodes tags of the form "key:value"
func decodeTags(vals []string) map[string]string {
	if len(vals) == 0 {
		return nil
	}
	tags := make(map[string]string, len(vals))
	for _, tag := range vals {
		s := strings.SplitN(tag, ":", 2)
		if len(s) == 2 && s[0] != "" {
			tags[s[0]] = s[1]
		} else {
			log.Warning("invalid tag ", tag)
		}
	}
	return tags
}
