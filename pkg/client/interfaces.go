// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package client holds the delivery clients events are handed to. A Client is
// the connection handle for one destination: build it once and share it across
// every exporter writing to that destination.
package client

import (
	"github.com/codeboten/ochoneycomb/pkg/event"
)

// Client delivers events to an ingestion API. Delivery, batching and retries
// are the client's concern.
type Client interface {
	event.Sender

	// Flush blocks until queued events have been handed to the network.
	Flush() error
	// Close flushes and releases the connection.
	Close()
	Name() string
}
