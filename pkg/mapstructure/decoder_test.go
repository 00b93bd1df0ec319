package mapstructure_test

import (
	"slices"
	"testing"
	"time"

	"kythe.io/kythe/go/util/datasize"

	"github.com/gekatateam/parrot/pkg/mapstructure"
)

type target struct {
	Flag    bool          `mapstructure:"flag"`
	Count   int           `mapstructure:"count"`
	Ratio   float64       `mapstructure:"ratio"`
	Timeout time.Duration `mapstructure:"timeout"`
	Limit   datasize.Size `mapstructure:"limit"`
	Names   []string      `mapstructure:"names"`
}

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		input   map[string]any
		expect  target
		wantErr bool
	}{
		"weak-strings": {
			input: map[string]any{
				"flag":    "true",
				"count":   "42",
				"ratio":   "1.5",
				"timeout": "3s",
				"limit":   "1MiB",
				"names":   "a,b",
			},
			expect: target{
				Flag:    true,
				Count:   42,
				Ratio:   1.5,
				Timeout: 3 * time.Second,
				Limit:   datasize.Mebibyte,
				Names:   []string{"a", "b"},
			},
		},
		"native-types": {
			input: map[string]any{
				"flag":  false,
				"count": int64(7),
				"names": []any{"x"},
			},
			expect: target{Count: 7, Names: []string{"x"}},
		},
		"bad-int": {
			input:   map[string]any{"count": "many"},
			wantErr: true,
		},
		"bad-duration": {
			input:   map[string]any{"timeout": "soon"},
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var got target
			err := mapstructure.Decode(test.input, &got)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Flag != test.expect.Flag || got.Count != test.expect.Count ||
				got.Ratio != test.expect.Ratio || got.Timeout != test.expect.Timeout ||
				got.Limit != test.expect.Limit || !slices.Equal(got.Names, test.expect.Names) {
				t.Fatalf("expected %+v, got %+v", test.expect, got)
			}
		})
	}
}
