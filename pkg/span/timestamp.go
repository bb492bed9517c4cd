// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package span

import (
	"errors"
	"fmt"
	"time"
)

const (
	// TimeLayout is the textual form of span timestamps: UTC with microseconds.
	TimeLayout = "2006-01-02T15:04:05.000000Z"

	// parseLayout also accepts fewer (or no) fractional digits.
	parseLayout = "2006-01-02T15:04:05.999999999Z"
)

var ErrInvalidTimestamp = errors.New("invalid span timestamp")

func ParseTime(ts string) (time.Time, error) {
	t, err := time.Parse(parseLayout, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidTimestamp, ts, err)
	}
	return t, nil
}

// Microseconds converts a span timestamp to microseconds since the Unix epoch.
func Microseconds(ts string) (int64, error) {
	t, err := ParseTime(ts)
	if err != nil {
		return 0, err
	}
	return t.UnixMicro(), nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
