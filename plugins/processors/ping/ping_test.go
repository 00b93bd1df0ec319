package ping_test

import (
	"slices"
	"testing"

	"github.com/gekatateam/parrot/auth"
	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/dispatcher"
	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/metrics"
	_ "github.com/gekatateam/parrot/plugins/processors/ping"
	"github.com/gekatateam/parrot/rpc"
)

func TestPing(t *testing.T) {
	tests := map[string]struct {
		message   string
		addressed bool
		sections  config.Sections
		expect    []string
	}{
		"pong": {
			message:   "ping",
			addressed: true,
			expect:    []string{"pong"},
		},
		"case-insensitive": {
			message:   "PING",
			addressed: true,
			expect:    []string{"pong"},
		},
		"not-addressed": {
			message:   "ping",
			addressed: false,
			expect:    []string{},
		},
		"not-addressed-allowed": {
			message:   "ping",
			addressed: false,
			sections:  config.Sections{"ping": {"addressed": "false"}},
			expect:    []string{"pong"},
		},
		"no-match": {
			message:   "ping me",
			addressed: true,
			expect:    []string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := config.NewStore()
			if test.sections != nil {
				if err := store.SetLayer(config.LayerFile, test.sections); err != nil {
					t.Fatalf("configuration rejected: %v", err)
				}
			}

			d := dispatcher.New(store, auth.DenyAll, rpc.NewRegistry(), logger.Mock())
			d.ProcObs, d.HandlerObs = metrics.ObservePluginMock, metrics.ObserveMock
			if err := d.Build([]string{"ping"}); err != nil {
				t.Fatalf("build failed: %v", err)
			}

			e := core.NewEvent("test", core.EventMessage)
			e.Message = test.message
			e.Addressed = test.addressed

			got := d.Dispatch(e).Replies()
			if !slices.Equal(got, test.expect) {
				t.Fatalf("unexpected replies, want: %v, got: %v", test.expect, got)
			}

			if len(test.expect) > 0 && !e.Processed {
				t.Fatal("event not marked as processed")
			}
		})
	}
}
