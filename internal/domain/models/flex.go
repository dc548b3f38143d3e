package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes strings, numbers and booleans as text. Arrays yield their
// first element; objects and null yield "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	case '[':
		var arr []FlexString
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*s = ""
		if len(arr) > 0 {
			*s = arr[0]
		}
	case '{':
		*s = ""
	default:
		if bytes.Equal(b, []byte("null")) {
			*s = ""
			return nil
		}
		*s = FlexString(b)
	}
	return nil
}

// OptFloat is a nullable number that also accepts numeric strings.
type OptFloat struct {
	Value float64
	Valid bool
}

func (o *OptFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*o = OptFloat{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*o = OptFloat{Value: f, Valid: true}
	}
	return nil
}

func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil when the value is missing.
func (o OptFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
