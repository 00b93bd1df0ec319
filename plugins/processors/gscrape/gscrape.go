package gscrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"kythe.io/kythe/go/util/datasize"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/plugins"
	"github.com/gekatateam/parrot/plugins/common/retryer"
)

const maxResults = 8

type Options struct {
	ScrapeUrl       string        `mapstructure:"scrape_url"`
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxBody         datasize.Size `mapstructure:"max_body"`
	retryer.Retryer `mapstructure:",squash"`
}

var defaultOptions = Options{
	ScrapeUrl: "http://www.google.com/search",
	UserAgent: "Mozilla/5.0",
	Timeout:   10 * time.Second,
	MaxBody:   2 * datasize.Mebibyte,
	Retryer: retryer.Retryer{
		RetryAttempts: 2,
		RetryAfter:    time.Second,
	},
}

// Gscrape covers search features missing from the JSON API
// by parsing the search result page.
type Gscrape struct {
	*core.BaseProcessor
	opts   *config.Option[Options]
	client *http.Client
}

func (p *Gscrape) Init() error {
	opts, err := config.Bind(p.Store, p.Alias, defaultOptions)
	if err != nil {
		return err
	}
	p.opts = opts

	if _, err := url.ParseRequestURI(opts.Get().ScrapeUrl); err != nil {
		return fmt.Errorf("scrape_url: %w", err)
	}

	p.client = &http.Client{}

	if err := p.Match("calc", `^gcalc\s+(.+)$`, p.calc); err != nil {
		return err
	}

	if err := p.Match("define", `^gdefine\s+(.+)$`, p.define); err != nil {
		return err
	}

	return p.Match("country", `^google(?:\.com?)?\.([a-z]{2})\s+(.*)$`, p.country)
}

func (p *Gscrape) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Gscrape) calc(e *core.Event, groups ...string) (*core.Event, error) {
	doc, err := p.scrape(e.Context(), groups[0], "")
	if err != nil {
		return nil, err
	}

	font := findFirst(doc, "font", hasAttr("size", "+1"))
	if font == nil {
		e.AddResponse("No result")
		return nil, nil
	}

	b := findFirst(font, "b", nil)
	if b == nil {
		e.AddResponse("No result")
		return nil, nil
	}

	e.AddResponse(strings.TrimSpace(text(b)))
	return nil, nil
}

func (p *Gscrape) define(e *core.Event, groups ...string) (*core.Event, error) {
	doc, err := p.scrape(e.Context(), "define:"+groups[0], "")
	if err != nil {
		return nil, err
	}

	var definitions []string
	for _, li := range findAll(doc, "li", nil) {
		if li.FirstChild == nil {
			continue
		}

		def := strings.TrimSpace(text(li.FirstChild))
		if len(def) > 0 {
			definitions = append(definitions, def)
		}
	}

	if len(definitions) == 0 {
		e.AddResponse("Are you making up words again?")
		return nil, nil
	}

	e.AddResponse(strings.Join(definitions, " :: "))
	return nil, nil
}

func (p *Gscrape) country(e *core.Event, groups ...string) (*core.Event, error) {
	doc, err := p.scrape(e.Context(), groups[1], groups[0])
	if err != nil {
		return nil, err
	}

	var results []string
	for _, li := range findAll(doc, "li", nil) {
		a := findFirst(li, "a", nil)
		if a == nil {
			continue
		}

		href, ok := attr(a, "href")
		if !ok {
			continue
		}

		title := strings.TrimSpace(text(a))
		if strings.HasPrefix(title, "Image results for") {
			continue
		}

		results = append(results, fmt.Sprintf("\"%v\" %v", title, href))
		if len(results) >= maxResults {
			break
		}
	}

	if len(results) == 0 {
		e.AddResponse("Wow! Google couldn't find anything.")
		return nil, nil
	}

	e.AddResponse(strings.Join(results, ", "))
	return nil, nil
}

func (p *Gscrape) scrape(ctx context.Context, query, country string) (*html.Node, error) {
	opts := p.opts.Get()

	params := url.Values{}
	params.Set("q", query)
	if len(country) > 0 {
		params.Set("cr", "country"+strings.ToUpper(country))
	}
	target := opts.ScrapeUrl + "?" + params.Encode()

	var doc *html.Node
	err := opts.Retryer.Do(ctx, "google scrape", p.Log, func() error {
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", opts.UserAgent)

		res, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return errors.Errorf("unexpected status code %v", res.StatusCode)
		}

		doc, err = html.Parse(io.LimitReader(res.Body, int64(opts.MaxBody.Bytes())))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "google scrape failed")
	}

	return doc, nil
}

func init() {
	plugins.AddProcessor("gscrape", func() core.Processor {
		return &Gscrape{}
	})
}
