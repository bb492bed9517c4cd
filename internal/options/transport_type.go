package options

import (
	"errors"

	"github.com/codeboten/ochoneycomb/pkg/exporter"
)

type TransportType string

const (
	SyncTransportType  TransportType = exporter.TransportSync
	AsyncTransportType TransportType = exporter.TransportAsync
)

var InvalidTransportTypeErr = errors.New("--transport can only be sync or async")

func NewTransportType(value string) (TransportType, error) {
	switch value {
	case "sync":
		return SyncTransportType, nil
	case "async":
		return AsyncTransportType, nil
	}
	return "", InvalidTransportTypeErr
}

func (t TransportType) String() string {
	return string(t)
}

func (t *TransportType) Set(value string) error {
	var err error
	*t, err = NewTransportType(value)
	return err
}

func (t TransportType) Type() string {
	return "string"
}

func (t TransportType) Async() bool {
	return t == AsyncTransportType
}
