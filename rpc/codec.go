package rpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Exception is the wire form of a failed call.
type Exception struct {
	Exception bool   `json:"exception"`
	Message   string `json:"message"`
}

// DecodeArg parses raw as JSON, falling back to raw itself.
// Integral numbers become int64, other numbers float64.
func DecodeArg(raw string) any {
	if !json.Valid([]byte(raw)) {
		return raw
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}

	return normalize(v)
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

func encodeResult(v any) ([]byte, error) {
	return json.Marshal(v)
}

func encodeException(err error) []byte {
	data, _ := json.Marshal(Exception{
		Exception: true,
		Message:   err.Error(),
	})
	return data
}

// AsString converts a decoded argument back to text,
// nil gives an empty string.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

func AsInt(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("%v is not an integer", t)
		}
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

func AsBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	case int64:
		return t != 0, nil
	default:
		return false, fmt.Errorf("cannot use %T as boolean", v)
	}
}
