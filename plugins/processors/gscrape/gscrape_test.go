package gscrape_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gekatateam/parrot/auth"
	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/dispatcher"
	"github.com/gekatateam/parrot/logger"
	"github.com/gekatateam/parrot/metrics"
	_ "github.com/gekatateam/parrot/plugins/processors/gscrape"
	"github.com/gekatateam/parrot/rpc"
)

var pages = map[string]string{
	"1+1": `<html><body><font size="+1"><b>1 + 1 = 2</b></font></body></html>`,
	"2+2": `<html><body><font size="-1"><b>ads</b></font></body></html>`,
	"define:parrot": `<html><body><ul>
		<li> a bird that talks <a href="/x">more</a></li>
		<li>someone who repeats others</li>
	</ul></body></html>`,
	"define:blorp": `<html><body><p>nothing here</p></body></html>`,
	"countryZA/golang": `<html><body><ol>
		<li><a href="http://golang.org/">The <em>Go</em> language</a></li>
		<li><a href="/images?q=golang">Image results for golang</a></li>
		<li>no link</li>
		<li><a href="http://go.dev/">Go "dev" C:\go</a></li>
	</ol></body></html>`,
}

func newScraper(t *testing.T) *httptest.Server {
	t.Helper()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "parrot-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		key := r.URL.Query().Get("q")
		if cr := r.URL.Query().Get("cr"); len(cr) > 0 {
			key = cr + "/" + key
		}

		page, ok := pages[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(s.Close)
	return s
}

func TestGscrape(t *testing.T) {
	tests := map[string]struct {
		message string
		expect  []string
	}{
		"calc": {
			message: "gcalc 1+1",
			expect:  []string{"1 + 1 = 2"},
		},
		"calc-no-result": {
			message: "gcalc 2+2",
			expect:  []string{"No result"},
		},
		"define": {
			message: "gdefine parrot",
			expect:  []string{"a bird that talks :: someone who repeats others"},
		},
		"define-unknown": {
			message: "gdefine blorp",
			expect:  []string{"Are you making up words again?"},
		},
		"country": {
			message: "google.co.za golang",
			expect:  []string{`"The Go language" http://golang.org/, "Go "dev" C:\go" http://go.dev/`},
		},
		"page-failure": {
			message: "gcalc 3+3",
			expect:  []string{},
		},
	}

	s := newScraper(t)
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := config.NewStore()
			err := store.SetLayer(config.LayerFile, config.Sections{
				"gscrape": {
					"scrape_url":     s.URL + "/search",
					"user_agent":     "parrot-test",
					"retry_attempts": "1",
				},
			})
			if err != nil {
				t.Fatalf("configuration rejected: %v", err)
			}

			d := dispatcher.New(store, auth.AllowAll, rpc.NewRegistry(), logger.Mock())
			d.ProcObs, d.HandlerObs = metrics.ObservePluginMock, metrics.ObserveMock
			if err := d.Build([]string{"gscrape"}); err != nil {
				t.Fatalf("build failed: %v", err)
			}
			defer d.Close()

			e := core.NewEvent("test", core.EventMessage)
			e.Message = test.message
			e.Addressed = true

			got := d.Dispatch(e).Replies()
			if !slices.Equal(got, test.expect) {
				t.Fatalf("unexpected replies, want: %v, got: %v", test.expect, got)
			}
		})
	}
}
