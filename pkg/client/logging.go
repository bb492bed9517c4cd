// Copyright 2018-2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"math/rand"

	gm "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/wavefronthq/go-metrics-wavefront/reporting"
)

const defaultLogPercent = 0.01

// errorLogger logs every error at debug level and a sample of them otherwise.
type errorLogger struct {
	logPercent float32
}

func newErrorLogger(percent float32) errorLogger {
	if percent > 0.0 && percent <= 1.0 {
		return errorLogger{logPercent: percent}
	}
	return errorLogger{logPercent: defaultLogPercent}
}

func (l errorLogger) logVerboseError(f log.Fields, msg string) {
	if log.IsLevelEnabled(log.DebugLevel) {
		log.WithFields(f).Error(msg)
	} else if l.loggingAllowed() {
		log.WithFields(f).Errorf("%s %s", "[sampled error]", msg)
	}
}

func (l errorLogger) loggingAllowed() bool {
	return rand.Float32() <= l.logPercent
}

type clientCounters struct {
	sent   gm.Counter
	errors gm.Counter
}

func newClientCounters(client string) clientCounters {
	tags := map[string]string{"client": client}
	return clientCounters{
		sent:   gm.GetOrRegisterCounter(reporting.EncodeKey("client.events.sent", tags), gm.DefaultRegistry),
		errors: gm.GetOrRegisterCounter(reporting.EncodeKey("client.events.errors", tags), gm.DefaultRegistry),
	}
}
