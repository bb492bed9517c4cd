// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package span

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decoder reads a stream of JSON span records, one object after another
// (typically one per line).
type Decoder struct {
	dec    *jsoniter.Decoder
	record int
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (*Record, error) {
	if !d.dec.More() {
		return nil, io.EOF
	}
	var rec Record
	if err := d.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("error decoding span record %d: %w", d.record+1, err)
	}
	d.record++
	return &rec, nil
}

// Batch reads up to max records. It returns io.EOF only together with an
// empty batch.
func (d *Decoder) Batch(max int) ([]*Record, error) {
	var batch []*Record
	for len(batch) < max {
		rec, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return batch, err
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

func Marshal(rec *Record) ([]byte, error) {
	return json.Marshal(rec)
}
