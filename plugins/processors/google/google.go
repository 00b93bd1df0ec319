package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"kythe.io/kythe/go/util/datasize"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/plugins"
	"github.com/gekatateam/parrot/plugins/common/retryer"
	"github.com/gekatateam/parrot/rpc"
)

const (
	resultsLarge = "large"
	resultsSmall = "small"
)

type Options struct {
	ApiUrl          string        `mapstructure:"api_url"`
	ApiKey          string        `mapstructure:"api_key"`
	Referrer        string        `mapstructure:"referrer"`
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxBody         datasize.Size `mapstructure:"max_body"`
	retryer.Retryer `mapstructure:",squash"`
}

var defaultOptions = Options{
	ApiUrl:    "http://ajax.googleapis.com/ajax/services/search/web",
	Referrer:  "http://ibid.omnia.za.net/",
	UserAgent: "parrot",
	Timeout:   10 * time.Second,
	MaxBody:   datasize.Mebibyte,
	Retryer: retryer.Retryer{
		RetryAttempts: 2,
		RetryAfter:    time.Second,
	},
}

// Google answers searches through the web search JSON API.
type Google struct {
	*core.BaseProcessor
	opts   *config.Option[Options]
	client *http.Client
}

type apiResponse struct {
	ResponseData struct {
		Results []struct {
			TitleNoFormatting string `json:"titleNoFormatting"`
			UnescapedUrl      string `json:"unescapedUrl"`
		} `json:"results"`
		Cursor struct {
			EstimatedResultCount any `json:"estimatedResultCount"`
		} `json:"cursor"`
	} `json:"responseData"`
}

type Result struct {
	Title string `json:"title"`
	Url   string `json:"url"`
}

type Fight struct {
	Winner     string `json:"winner"`
	WinnerHits int64  `json:"winner_hits"`
	Loser      string `json:"loser"`
	LoserHits  int64  `json:"loser_hits"`
}

func (p *Google) Init() error {
	opts, err := config.Bind(p.Store, p.Alias, defaultOptions)
	if err != nil {
		return err
	}
	p.opts = opts

	if _, err := url.ParseRequestURI(opts.Get().ApiUrl); err != nil {
		return fmt.Errorf("api_url: %w", err)
	}

	p.client = &http.Client{}

	if err := p.Match("search", `^google\s+(?:for\s+)?(.+?)$`, p.searchHandler); err != nil {
		return err
	}

	return p.Match("googlefight", `^(?:rank|(?:google(?:fight|compare|cmp)))\s+(?:for\s+)?(.+?)\s+and\s+(.+?)$`, p.fightHandler)
}

func (p *Google) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Google) RemoteMethods() []rpc.Method {
	return []rpc.Method{
		{
			Name: "search",
			Args: []string{"query"},
			Func: func(ctx context.Context, args []any) (any, error) {
				return p.Search(ctx, rpc.AsString(args[0]))
			},
		},
		{
			Name: "fight",
			Args: []string{"term1", "term2"},
			Func: func(ctx context.Context, args []any) (any, error) {
				return p.Fight(ctx, rpc.AsString(args[0]), rpc.AsString(args[1]))
			},
		},
	}
}

func (p *Google) searchHandler(e *core.Event, groups ...string) (*core.Event, error) {
	results, err := p.Search(e.Context(), groups[0])
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		e.AddResponse("Wow! Google couldn't find anything.")
		return nil, nil
	}

	formatted := make([]string, 0, len(results))
	for _, r := range results {
		formatted = append(formatted, fmt.Sprintf("\"%v\" %v", r.Title, r.Url))
	}
	e.AddResponse(strings.Join(formatted, ", "))
	return nil, nil
}

func (p *Google) fightHandler(e *core.Event, groups ...string) (*core.Event, error) {
	f, err := p.Fight(e.Context(), groups[0], groups[1])
	if err != nil {
		return nil, err
	}

	e.AddResponsef("%v wins with %v hits, %v had %v hits", f.Winner, f.WinnerHits, f.Loser, f.LoserHits)
	return nil, nil
}

func (p *Google) Search(ctx context.Context, query string) ([]Result, error) {
	res, err := p.query(ctx, query, resultsLarge)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(res.ResponseData.Results))
	for _, r := range res.ResponseData.Results {
		results = append(results, Result{
			Title: html.UnescapeString(r.TitleNoFormatting),
			Url:   r.UnescapedUrl,
		})
	}
	return results, nil
}

func (p *Google) Fight(ctx context.Context, term1, term2 string) (*Fight, error) {
	count1, err := p.count(ctx, term1)
	if err != nil {
		return nil, err
	}

	count2, err := p.count(ctx, term2)
	if err != nil {
		return nil, err
	}

	if count1 > count2 {
		return &Fight{Winner: term1, WinnerHits: count1, Loser: term2, LoserHits: count2}, nil
	}
	return &Fight{Winner: term2, WinnerHits: count2, Loser: term1, LoserHits: count1}, nil
}

func (p *Google) count(ctx context.Context, term string) (int64, error) {
	res, err := p.query(ctx, term, resultsSmall)
	if err != nil {
		return 0, err
	}

	switch c := res.ResponseData.Cursor.EstimatedResultCount.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "bad estimated result count for %v", term)
		}
		return n, nil
	case float64:
		return int64(c), nil
	default:
		return 0, errors.Errorf("unexpected estimated result count type %T for %v", c, term)
	}
}

func (p *Google) query(ctx context.Context, query, size string) (*apiResponse, error) {
	opts := p.opts.Get()

	params := url.Values{}
	params.Set("v", "1.0")
	params.Set("q", query)
	params.Set("rsz", size)
	if len(opts.ApiKey) > 0 {
		params.Set("key", opts.ApiKey)
	}
	target := opts.ApiUrl + "?" + params.Encode()

	var body []byte
	err := opts.Retryer.Do(ctx, "google api search", p.Log, func() error {
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", opts.UserAgent)
		req.Header.Set("Referer", opts.Referrer)

		res, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return errors.Errorf("unexpected status code %v", res.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(res.Body, int64(opts.MaxBody.Bytes())))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "google api request failed")
	}

	result := &apiResponse{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, errors.Wrap(err, "google api response decoding failed")
	}
	return result, nil
}

func init() {
	plugins.AddProcessor("google", func() core.Processor {
		return &Google{}
	})
}
