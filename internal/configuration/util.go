// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package configuration

import "time"

const (
	DefaultStatsInterval = 60 * time.Second
	DefaultStatsPrefix   = "ochoneycomb."
)

func GetStringValue(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func GetDurationValue(value, defaultValue time.Duration) time.Duration {
	if value != 0 {
		return value
	}
	return defaultValue
}

// StatsInterval returns the configured stats interval or its default.
func (cfg *Config) StatsInterval() time.Duration {
	return GetDurationValue(cfg.Stats.Interval, DefaultStatsInterval)
}

func (cfg *Config) StatsPrefix() string {
	return GetStringValue(cfg.Stats.Prefix, DefaultStatsPrefix)
}
