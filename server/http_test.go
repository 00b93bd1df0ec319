package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/server"
)

func TestHttpServer(t *testing.T) {
	s, err := server.Http(config.Common{HttpAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("server not created: %v", err)
	}

	s.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	})

	done := make(chan error)
	go func() { done <- s.Serve() }()

	tests := map[string]int{
		"/metrics": http.StatusOK,
		"/ping":    http.StatusOK,
		"/missing": http.StatusNotFound,
	}

	for path, status := range tests {
		t.Run(path, func(t *testing.T) {
			res, err := http.Get("http://" + s.Addr().String() + path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			res.Body.Close()

			if res.StatusCode != status {
				t.Fatalf("unexpected status, want: %v, got: %v", status, res.StatusCode)
			}
		})
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("serve failed: %v", err)
	}
}
