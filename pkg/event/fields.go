// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package event

// Fields is an insertion ordered field bag. Setting an existing key replaces
// its value but keeps its original position.
type Fields struct {
	keys   []string
	values map[string]Value
}

func NewFields() *Fields {
	return &Fields{values: map[string]Value{}}
}

func (f *Fields) Set(key string, value Value) {
	if f.values == nil {
		f.values = map[string]Value{}
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Merge sets every field of other, in other's order.
func (f *Fields) Merge(other *Fields) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		f.Set(k, other.values[k])
	}
}

func (f *Fields) Get(key string) (Value, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *Fields) Len() int {
	return len(f.keys)
}

// Keys returns a copy of the field names in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f *Fields) Each(fn func(key string, value Value)) {
	for _, k := range f.keys {
		fn(k, f.values[k])
	}
}

// Map returns the fields as plain Go values.
func (f *Fields) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(f.keys))
	for _, k := range f.keys {
		out[k] = f.values[k].Interface()
	}
	return out
}
