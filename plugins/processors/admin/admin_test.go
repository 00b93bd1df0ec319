package admin_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gekatateam/parrot/auth"
	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/dispatcher"
	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/metrics"
	_ "github.com/gekatateam/parrot/plugins/processors/admin"
	"github.com/gekatateam/parrot/rpc"
)

func newAdmin(t *testing.T, loader config.Loader) (*dispatcher.Dispatcher, *config.Store, *rpc.Registry) {
	t.Helper()

	store := config.NewStore()
	if loader != nil {
		store.SetLoader(config.LayerFile, loader)
		if err := store.Reload(); err != nil {
			t.Fatalf("configuration not loaded: %v", err)
		}
	}

	authoriser, err := auth.New(config.Auth{"config": {"telegram:root"}}, logger.Mock())
	if err != nil {
		t.Fatalf("authoriser not created: %v", err)
	}

	registry := rpc.NewRegistry()
	d := dispatcher.New(store, authoriser, registry, logger.Mock())
	d.ProcObs, d.HandlerObs = metrics.ObservePluginMock, metrics.ObserveMock
	if err := d.Build([]string{"admin"}); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return d, store, registry
}

func event(sender, message string) *core.Event {
	e := core.NewEvent("telegram", core.EventMessage)
	e.Sender = sender
	e.Message = message
	e.Addressed = true
	return e
}

func TestAdmin(t *testing.T) {
	tests := map[string]struct {
		sender    string
		message   string
		expect    []string
		notAuthed bool
	}{
		"get": {
			sender:  "root",
			message: "config google referrer",
			expect:  []string{"google.referrer = http://example.org/"},
		},
		"get-missing": {
			sender:  "root",
			message: "config google user_agent",
			expect:  []string{"google.user_agent is not set"},
		},
		"get-masked": {
			sender:  "root",
			message: "config google API_KEY",
			expect:  []string{"google.API_KEY is hidden"},
		},
		"get-refused": {
			sender:    "mallory",
			message:   "config google referrer",
			expect:    []string{},
			notAuthed: true,
		},
		"set": {
			sender:  "root",
			message: "set config google timeout to 5s",
			expect:  []string{"google.timeout set"},
		},
		"reload": {
			sender:  "root",
			message: "reload config",
			expect:  []string{"Configuration reloaded"},
		},
		"reload-refused": {
			sender:    "",
			message:   "reload config",
			expect:    []string{},
			notAuthed: true,
		},
	}

	loader := func() (config.Sections, error) {
		return config.Sections{
			"google": {"referrer": "http://example.org/", "api_key": "secret"},
		}, nil
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			d, _, _ := newAdmin(t, loader)

			e := d.Dispatch(event(test.sender, test.message))
			if got := e.Replies(); !slices.Equal(got, test.expect) {
				t.Fatalf("unexpected replies, want: %v, got: %v", test.expect, got)
			}

			if e.NotAuthed != test.notAuthed {
				t.Fatalf("unexpected not authed flag, want: %v, got: %v", test.notAuthed, e.NotAuthed)
			}
		})
	}
}

func TestAdminSetRejected(t *testing.T) {
	d, store, _ := newAdmin(t, nil)

	// admin binds its own section, so a malformed value is rejected
	e := d.Dispatch(event("root", "set config admin priority high"))
	if got := e.Replies(); len(got) != 1 || !strings.HasPrefix(got[0], "Rejected: ") {
		t.Fatalf("unexpected replies: %v", got)
	}

	if _, ok := store.Lookup("admin", "priority"); ok {
		t.Fatal("rejected value committed")
	}

	e = d.Dispatch(event("root", "reload config"))
	if got := e.Replies(); len(got) != 1 || got[0] != "Configuration reload failed: no configuration loaders set" {
		t.Fatalf("unexpected replies: %v", got)
	}
}

func TestAdminRemote(t *testing.T) {
	loads := 0
	_, store, registry := newAdmin(t, func() (config.Sections, error) {
		loads++
		return config.Sections{"google": {"referrer": "http://example.org/"}}, nil
	})

	o, ok := registry.Lookup("admin")
	if !ok {
		t.Fatal("admin remote object not registered")
	}
	o.Obs = metrics.ObserveMock

	data, err := o.Invoke(context.Background(), "get", []string{"google", "referrer"}, nil)
	if err != nil || string(data) != `"http://example.org/"` {
		t.Fatalf("unexpected result: %s, %v", data, err)
	}

	data, err = o.Invoke(context.Background(), "set", []string{"google", "retry_attempts", "3"}, nil)
	if err != nil || string(data) != `true` {
		t.Fatalf("unexpected result: %s, %v", data, err)
	}

	if v, _ := store.Lookup("google", "retry_attempts"); v != int64(3) {
		t.Fatalf("unexpected stored value: %#v", v)
	}

	data, err = o.Invoke(context.Background(), "reload", nil, nil)
	if err != nil || string(data) != `true` || loads != 2 {
		t.Fatalf("unexpected result: %s, %v, loads: %v", data, err, loads)
	}

	data, err = o.Invoke(context.Background(), "get", nil, map[string]string{"section": "google", "key": "secret_token"})
	if err != nil || string(data) != `{"exception":true,"message":"value is masked"}` {
		t.Fatalf("unexpected result: %s, %v", data, err)
	}

	if _, err := o.Invoke(context.Background(), "drop", nil, nil); !errors.Is(err, rpc.ErrNotFound) {
		t.Fatalf("expected not found error, got: %v", err)
	}
}
