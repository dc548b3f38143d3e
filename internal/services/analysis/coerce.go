package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// toStr converts v to text. Absent and null yield def; numbers keep their
// literal; lists and objects are rendered as compact JSON.
func toStr(v Value, def string) string {
	switch t := v.(type) {
	case nil, Null:
		return def
	case String:
		return string(t)
	case Number:
		return string(t)
	case Bool:
		return strconv.FormatBool(bool(t))
	case Array, *Object:
		b, err := json.Marshal(t)
		if err != nil {
			return def
		}
		return string(b)
	}
	return def
}

// toNum reads a finite number from v. Strings contribute their leading
// numeric prefix ("12.5%" is 12.5). Anything else yields def.
func toNum(v Value, def float64) float64 {
	var f float64
	var ok bool
	switch t := v.(type) {
	case Number:
		var err error
		f, err = strconv.ParseFloat(string(t), 64)
		ok = err == nil
	case String:
		f, ok = parseFloatPrefix(string(t))
	case Array:
		f, ok = parseFloatPrefix(arrayText(t))
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func parseFloatPrefix(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ensureArray wraps a bare value in a list; absent and null become empty.
func ensureArray(v Value) Array {
	switch t := v.(type) {
	case nil, Null:
		return Array{}
	case Array:
		return t
	}
	return Array{v}
}

// obj returns v if it is an object, otherwise an empty one.
func obj(v Value) *Object {
	if o, ok := v.(*Object); ok && o != nil {
		return o
	}
	return NewObject()
}

func truthy(v Value) bool {
	switch t := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		f, err := strconv.ParseFloat(string(t), 64)
		return err != nil || (f != 0 && !math.IsNaN(f))
	case String:
		return t != ""
	case Array, *Object:
		return true
	}
	return false
}

// isScalar reports null, absent and primitive values.
func isScalar(v Value) bool {
	switch v.(type) {
	case Array, *Object:
		return false
	}
	return true
}

func strPtr(s string) *string { return &s }
