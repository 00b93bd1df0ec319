package rpc_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/rpc"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := rpc.NewRegistry()
	if err := r.Register(newTestObject(t)); err != nil {
		t.Fatalf("object not registered: %v", err)
	}

	s := httptest.NewServer(rpc.Rest(r, logger.Mock()).Router())
	t.Cleanup(s.Close)
	return s
}

func TestRestApi(t *testing.T) {
	tests := map[string]struct {
		method      string
		path        string
		contentType string
		accept      string
		body        string
		status      int
		expect      string
	}{
		"list-objects": {
			method: http.MethodGet,
			path:   "/",
			status: http.StatusOK,
			expect: `["test"]`,
		},
		"unknown-object": {
			method: http.MethodGet,
			path:   "/missing",
			status: http.StatusNotFound,
			expect: "Not found",
		},
		"listing-json": {
			method: http.MethodGet,
			path:   "/test",
			accept: "application/json",
			status: http.StatusOK,
			expect: `{"object":"test","functions":["echo","kind","concat","fail","panic","pair"],"args":{`,
		},
		"listing-html": {
			method: http.MethodGet,
			path:   "/test/",
			status: http.StatusOK,
			expect: `<a href="/test/concat">concat</a>`,
		},
		"unknown-method-get-lists": {
			method: http.MethodGet,
			path:   "/test/missing",
			accept: "application/json",
			status: http.StatusOK,
			expect: `"functions":`,
		},
		"unknown-method-post": {
			method: http.MethodPost,
			path:   "/test/missing",
			status: http.StatusNotFound,
			expect: "Not found",
		},
		"usage-form": {
			method: http.MethodGet,
			path:   "/test/concat",
			status: http.StatusOK,
			expect: `<input type="text" name="right"/>`,
		},
		"usage-json": {
			method: http.MethodGet,
			path:   "/test/concat",
			accept: "application/json",
			status: http.StatusOK,
			expect: `{"object":"test","method":"concat","args":["left","right"]}`,
		},
		"get-without-arguments-invokes": {
			method: http.MethodGet,
			path:   "/test/fail",
			status: http.StatusOK,
			expect: `{"exception":true,"message":"boom"}`,
		},
		"get-path-arguments": {
			method: http.MethodGet,
			path:   "/test/concat/a/b",
			status: http.StatusOK,
			expect: `"ab"`,
		},
		"get-query-arguments": {
			method: http.MethodGet,
			path:   "/test/concat?left=a&right=c",
			status: http.StatusOK,
			expect: `"ac"`,
		},
		"empty-path-argument": {
			method: http.MethodPost,
			path:   "/test/pair//b",
			status: http.StatusOK,
			expect: `["","b"]`,
		},
		"empty-path-arguments-with-trailing-slash": {
			method: http.MethodPost,
			path:   "/test/pair///",
			status: http.StatusOK,
			expect: `["",""]`,
		},
		"trailing-slash-adds-nothing": {
			method: http.MethodPost,
			path:   "/test/pair/a/",
			status: http.StatusOK,
			expect: `["a",null]`,
		},
		"post-integer": {
			method: http.MethodPost,
			path:   "/test/kind/42",
			status: http.StatusOK,
			expect: `"int64"`,
		},
		"post-form": {
			method:      http.MethodPost,
			path:        "/test/concat/x",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"right": {"y"}}.Encode(),
			status:      http.StatusOK,
			expect:      `"xy"`,
		},
		"post-json-object": {
			method:      http.MethodPost,
			path:        "/test/kind",
			contentType: "application/json",
			body:        `{"value": 1.5}`,
			status:      http.StatusOK,
			expect:      `"float64"`,
		},
		"post-json-array": {
			method:      http.MethodPost,
			path:        "/test/concat/a",
			contentType: "application/json",
			body:        `["z"]`,
			status:      http.StatusOK,
			expect:      `"az"`,
		},
		"post-json-scalar": {
			method:      http.MethodPost,
			path:        "/test/kind",
			contentType: "application/json",
			body:        `1`,
			status:      http.StatusBadRequest,
			expect:      "JSON object or array",
		},
		"post-exception": {
			method: http.MethodPost,
			path:   "/test/panic",
			status: http.StatusOK,
			expect: `{"exception":true,"message":"kaboom"}`,
		},
	}

	s := newTestServer(t)
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(test.method, s.URL+test.path, strings.NewReader(test.body))
			if err != nil {
				t.Fatalf("request not created: %v", err)
			}
			if len(test.contentType) > 0 {
				req.Header.Set("Content-Type", test.contentType)
			}
			if len(test.accept) > 0 {
				req.Header.Set("Accept", test.accept)
			}

			res, err := s.Client().Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer res.Body.Close()

			body, _ := io.ReadAll(res.Body)
			if res.StatusCode != test.status {
				t.Fatalf("unexpected status, want: %v, got: %v, body: %s", test.status, res.StatusCode, body)
			}

			if !strings.Contains(string(body), test.expect) {
				t.Fatalf("unexpected body, want: %v, got: %s", test.expect, body)
			}
		})
	}
}

func TestListingUnderMountPath(t *testing.T) {
	o, err := rpc.NewObject("r", rpc.Method{
		Name: "x",
		Func: func(_ context.Context, _ []any) (any, error) { return nil, nil },
	})
	if err != nil {
		t.Fatalf("object not created: %v", err)
	}

	r := rpc.NewRegistry()
	if err := r.Register(o); err != nil {
		t.Fatalf("object not registered: %v", err)
	}

	mux := chi.NewRouter()
	mux.Mount("/rpc", rpc.Rest(r, logger.Mock()).Router())
	s := httptest.NewServer(mux)
	defer s.Close()

	for _, path := range []string{"/rpc/r", "/rpc/r/", "/rpc/r/missing"} {
		res, err := s.Client().Get(s.URL + path)
		if err != nil {
			t.Fatalf("%v: request failed: %v", path, err)
		}
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		if !strings.Contains(string(body), `<a href="/rpc/r/x">x</a>`) {
			t.Fatalf("%v: unexpected listing: %s", path, body)
		}
	}
}

func TestGateway(t *testing.T) {
	s := newTestServer(t)
	g := rpc.NewGateway(s.URL, "", time.Second)

	objects, err := g.Objects()
	if err != nil || !slices.Equal(objects, []string{"test"}) {
		t.Fatalf("unexpected objects: %v, %v", objects, err)
	}

	functions, err := g.Functions("test")
	if err != nil || len(functions) != 6 {
		t.Fatalf("unexpected functions: %v, %v", functions, err)
	}

	args, err := g.Usage("test", "concat")
	if err != nil || !slices.Equal(args, []string{"left", "right"}) {
		t.Fatalf("unexpected usage: %v, %v", args, err)
	}

	args, err = g.Usage("test", "fail")
	if err != nil || args == nil || len(args) != 0 {
		t.Fatalf("unexpected usage: %v, %v", args, err)
	}

	if _, err := g.Usage("test", "missing"); !errors.As(err, &rpc.NotFoundErr) {
		t.Fatalf("expected not found error, got: %v", err)
	}

	if _, err := g.Functions("missing"); !errors.As(err, &rpc.NotFoundErr) {
		t.Fatalf("expected not found error, got: %v", err)
	}

	result, err := g.Call("test", "concat", []string{"a b"}, map[string]string{"right": "/c"})
	if err != nil || string(result) != `"a b/c"` {
		t.Fatalf("unexpected result: %s, %v", result, err)
	}

	result, err = g.Call("test", "pair", []string{"", "b"}, nil)
	if err != nil || string(result) != `["","b"]` {
		t.Fatalf("unexpected result: %s, %v", result, err)
	}

	result, err = g.Call("test", "pair", []string{"a", ""}, nil)
	if err != nil || string(result) != `["a",""]` {
		t.Fatalf("unexpected result: %s, %v", result, err)
	}

	var remote *rpc.RemoteError
	if _, err := g.Call("test", "fail", nil, nil); !errors.As(err, &remote) || remote.Message != "boom" {
		t.Fatalf("expected remote error, got: %v", err)
	}

	if _, err := g.Call("test", "missing", nil, nil); !errors.As(err, &rpc.NotFoundErr) {
		t.Fatalf("expected not found error, got: %v", err)
	}
}
