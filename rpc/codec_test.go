package rpc_test

import (
	"reflect"
	"testing"

	"github.com/gekatateam/parrot/rpc"
)

func TestDecodeArg(t *testing.T) {
	tests := map[string]struct {
		raw    string
		expect any
	}{
		"integer":      {raw: "42", expect: int64(42)},
		"negative":     {raw: "-7", expect: int64(-7)},
		"float":        {raw: "2.5", expect: 2.5},
		"exponent":     {raw: "1e3", expect: 1000.0},
		"bool":         {raw: "true", expect: true},
		"null":         {raw: "null", expect: nil},
		"quoted":       {raw: `"42"`, expect: "42"},
		"bare-word":    {raw: "abc", expect: "abc"},
		"empty":        {raw: "", expect: ""},
		"broken-json":  {raw: `{"a":`, expect: `{"a":`},
		"trailing":     {raw: "1 2", expect: "1 2"},
		"nested":       {raw: `{"n":[1,1.5]}`, expect: map[string]any{"n": []any{int64(1), 1.5}}},
		"spaced-words": {raw: "hello world", expect: "hello world"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := rpc.DecodeArg(test.raw)
			if !reflect.DeepEqual(got, test.expect) {
				t.Fatalf("unexpected value, want: %#v, got: %#v", test.expect, got)
			}
		})
	}
}

func TestConverters(t *testing.T) {
	if got := rpc.AsString(int64(42)); got != "42" {
		t.Fatalf("unexpected string: %v", got)
	}
	if got := rpc.AsString(nil); got != "" {
		t.Fatalf("unexpected string: %v", got)
	}
	if got := rpc.AsString([]any{int64(1)}); got != "[1]" {
		t.Fatalf("unexpected string: %v", got)
	}

	if i, err := rpc.AsInt("12"); err != nil || i != 12 {
		t.Fatalf("unexpected int: %v, %v", i, err)
	}
	if _, err := rpc.AsInt(1.5); err == nil {
		t.Fatal("expected error for fractional value")
	}

	if b, err := rpc.AsBool("true"); err != nil || !b {
		t.Fatalf("unexpected bool: %v, %v", b, err)
	}
	if _, err := rpc.AsBool([]any{}); err == nil {
		t.Fatal("expected error for list value")
	}
}
