// Copyright 2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Kind identifies which member of a Value is set.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindAnnotations
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindAnnotations:
		return "annotations"
	default:
		return "unknown"
	}
}

// Annotation is a timestamped note carried by the "annotations" field.
type Annotation struct {
	Timestamp string `json:"timestamp"`
	Value     string `json:"value"`
}

// number matches both json.Number and jsoniter.Number.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// Value is a single event field value. The zero Value is the empty string.
type Value struct {
	kind        Kind
	str         string
	num         int64
	flt         float64
	boolean     bool
	annotations []Annotation
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Int(n int64) Value { return Value{kind: KindInt, num: n} }

func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Annotations copies a into a new annotation list value.
func Annotations(a []Annotation) Value {
	cp := make([]Annotation, len(a))
	copy(cp, a)
	return Value{kind: KindAnnotations, annotations: cp}
}

// FromInterface converts a decoded JSON or attribute value into a Value.
// Unsupported types are rendered with fmt.
func FromInterface(v interface{}) Value {
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint32:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case number:
		if n, err := t.Int64(); err == nil {
			return Int(n)
		}
		f, _ := t.Float64()
		return Float(f)
	case []Annotation:
		return Annotations(t)
	case nil:
		return String("")
	default:
		return String(fmt.Sprint(t))
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() string { return v.str }

func (v Value) AsInt() int64 { return v.num }

func (v Value) AsFloat() float64 { return v.flt }

func (v Value) AsBool() bool { return v.boolean }

func (v Value) AsAnnotations() []Annotation { return v.annotations }

// Interface returns the plain Go value handed to delivery libraries.
// Annotation lists become a slice of maps so they serialize as nested objects.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.boolean
	case KindAnnotations:
		out := make([]map[string]interface{}, 0, len(v.annotations))
		for _, a := range v.annotations {
			out = append(out, map[string]interface{}{
				"timestamp": a.Timestamp,
				"value":     a.Value,
			})
		}
		return out
	default:
		return v.str
	}
}

// String flattens the value for tag oriented sinks.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindAnnotations:
		parts := make([]string, 0, len(v.annotations))
		for _, a := range v.annotations {
			parts = append(parts, a.Timestamp+"="+a.Value)
		}
		return strings.Join(parts, ",")
	default:
		return v.str
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt
	case KindBool:
		return v.boolean == o.boolean
	case KindAnnotations:
		if len(v.annotations) != len(o.annotations) {
			return false
		}
		for i := range v.annotations {
			if v.annotations[i] != o.annotations[i] {
				return false
			}
		}
		return true
	default:
		return v.str == o.str
	}
}

var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindAnnotations {
		return jsonAPI.Marshal(v.annotations)
	}
	return jsonAPI.Marshal(v.Interface())
}

// UnmarshalJSON accepts scalars and arrays of {timestamp, value} objects.
// Integral numbers decode as KindInt, other numbers as KindFloat.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var anns []Annotation
		if err := jsonAPI.Unmarshal(data, &anns); err != nil {
			return fmt.Errorf("invalid annotation list: %w", err)
		}
		*v = Annotations(anns)
		return nil
	}
	var raw interface{}
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.(type) {
	case map[string]interface{}:
		return fmt.Errorf("unsupported field value: %s", trimmed)
	}
	*v = FromInterface(raw)
	return nil
}
