package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is untrusted model JSON. The concrete type is exactly one of Null,
// Bool, Number, String, Array or *Object; a nil Value means the key was absent.
type Value interface {
	isValue()
}

type (
	Null   struct{}
	Bool   bool
	Number json.Number
	String string
	Array  []Value
)

// Object keeps insertion order. Duplicate keys keep the last value.
type Object struct {
	keys   []string
	fields map[string]Value
}

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: map[string]Value{}}
}

// Get returns the value under key, or nil when absent.
func (o *Object) Get(key string) Value {
	if o == nil {
		return nil
	}
	return o.fields[key]
}

// Has reports whether key is present, even with a null value.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.fields[key]
	return ok
}

// Set stores v under key.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Keys returns keys in first-seen order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// ErrTrailingData is returned when a JSON document is followed by more content.
var ErrTrailingData = errors.New("trailing data after JSON value")

// Parse decodes exactly one JSON document. Numbers keep their literal text.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, el)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", kt)
				}
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, el)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// MarshalJSON renders the value compactly, preserving key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalValue(o.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, el := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalValue(el)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return strconv.AppendBool(nil, bool(t)), nil
	case Number:
		return []byte(t), nil
	case String:
		return json.Marshal(string(t))
	case Array:
		return t.MarshalJSON()
	case *Object:
		return t.MarshalJSON()
	}
	return nil, fmt.Errorf("unknown value %T", v)
}

// Kind names the variant, for logs.
func Kind(v Value) string {
	switch v.(type) {
	case nil:
		return "absent"
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case *Object:
		return "object"
	}
	return "unknown"
}

// arrayText joins elements the way a list renders as text: nulls are empty
// and nested lists are flattened with commas.
func arrayText(a Array) string {
	parts := make([]string, len(a))
	for i, el := range a {
		switch t := el.(type) {
		case String:
			parts[i] = string(t)
		case Number:
			parts[i] = string(t)
		case Bool:
			parts[i] = strconv.FormatBool(bool(t))
		case Array:
			parts[i] = arrayText(t)
		case *Object:
			parts[i] = "[object Object]"
		}
	}
	return strings.Join(parts, ",")
}
