package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotObject = errors.New("response is not a JSON object")

// stripFences removes a surrounding markdown code fence, if any
func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

// decodeObject strictly decodes text into a JSON object. Trailing content
// after the object is an error.
func decodeObject(text string) (object, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(stripFences(text))))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected content after JSON object")
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errNotObject
	}
	return object(m), nil
}

// safely runs fn and converts a panic into an error so parsing never escapes
// to the caller
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to extract fields: %v", r)
		}
	}()
	return fn()
}

// object gives typed access to a decoded JSON object with named defaults
type object map[string]interface{}

func (o object) has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

func (o object) str(key, def string) string {
	switch v := o[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return def
	}
}

func (o object) float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func (o object) intIn(key string, def, lo, hi int) int {
	f, ok := o.float(key)
	if !ok {
		return def
	}
	// clamp before converting; int() of a huge float is undefined
	return int(math.Round(math.Min(float64(hi), math.Max(float64(lo), f))))
}

func (o object) floatIn(key string, def, lo, hi float64) float64 {
	f, ok := o.float(key)
	if !ok {
		return def
	}
	return math.Min(hi, math.Max(lo, f))
}

// strings returns a list of strings. Non-string entries are skipped; a
// missing or mistyped field yields def.
func (o object) strings(key string, def []string) []string {
	items, ok := o[key].([]interface{})
	if !ok {
		return copyStrings(def)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = append(out, s)
			}
		case json.Number:
			out = append(out, v.String())
		}
	}
	return out
}

func (o object) obj(key string) object {
	m, ok := o[key].(map[string]interface{})
	if !ok {
		return object{}
	}
	return object(m)
}

// plain converts json.Number leaves back to float64 so the map can be
// re-encoded or stored without the decoder type leaking out
func plain(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
