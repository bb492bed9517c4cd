// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/codeboten/ochoneycomb/pkg/event"
)

// multiClient hands every event to each of its clients in order.
type multiClient struct {
	clients []Client
}

// NewMultiClient fans events out to clients. A single client is returned as is.
func NewMultiClient(clients ...Client) Client {
	if len(clients) == 1 {
		return clients[0]
	}
	return &multiClient{clients: clients}
}

func (m *multiClient) Name() string {
	return "multi_client"
}

func (m *multiClient) Send(ev *event.Event) error {
	var errs []error
	for _, c := range m.clients {
		if err := c.Send(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiClient) Flush() error {
	var errs []error
	for _, c := range m.clients {
		if err := c.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiClient) Close() {
	for _, c := range m.clients {
		log.WithField("name", c.Name()).Info("closing client")
		c.Close()
	}
}
