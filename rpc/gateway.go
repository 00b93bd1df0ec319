package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Gateway is a client of the bridge http transport.
type Gateway struct {
	addr string
	c    *http.Client
	t    time.Duration
	ctx  context.Context
	auth *BasicAuth
}

func NewGateway(addr, path string, timeout time.Duration) *Gateway {
	return &Gateway{
		addr: strings.TrimSuffix(fmt.Sprintf("%v/%v", strings.TrimSuffix(addr, "/"), strings.Trim(path, "/")), "/"),
		c: &http.Client{
			Timeout: timeout,
		},
		t:   timeout,
		ctx: context.Background(),
	}
}

// WithBasicAuth makes the gateway send credentials with every request.
func (g *Gateway) WithBasicAuth(username, password string) *Gateway {
	g.auth = &BasicAuth{Username: username, Password: password}
	return g
}

func (g *Gateway) do(req *http.Request) (*http.Response, error) {
	if g.auth != nil && g.auth.Enabled() {
		req.SetBasicAuth(g.auth.Username, g.auth.Password)
	}
	return g.c.Do(req)
}

func (g *Gateway) Objects() ([]string, error) {
	var names []string
	err := g.get(g.addr+"/", &names)
	return names, err
}

func (g *Gateway) Functions(object string) ([]string, error) {
	listing, err := g.listing(object)
	if err != nil {
		return nil, err
	}
	return listing.Functions, nil
}

// Usage returns declared argument names of a remote method.
func (g *Gateway) Usage(object, method string) ([]string, error) {
	listing, err := g.listing(object)
	if err != nil {
		return nil, err
	}

	args, ok := listing.Args[method]
	if !ok {
		return nil, &NotFoundError{Err: fmt.Errorf("%v.%v: %w", object, method, ErrNotFound)}
	}
	return args, nil
}

func (g *Gateway) listing(object string) (*listingModel, error) {
	listing := &listingModel{}
	if err := g.get(fmt.Sprintf("%v/%v", g.addr, url.PathEscape(object)), listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Call invokes a remote method and returns the raw JSON result.
// An exception raised by the method is returned as *RemoteError.
func (g *Gateway) Call(object, method string, args []string, kwargs map[string]string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(g.ctx, g.t)
	defer cancel()

	target := fmt.Sprintf("%v/%v/%v", g.addr, url.PathEscape(object), url.PathEscape(method))
	for _, a := range args {
		target += "/" + url.PathEscape(a)
	}
	if len(args) > 0 && len(args[len(args)-1]) == 0 {
		// trailing slash is dropped by the server
		target += "/"
	}

	form := url.Values{}
	for k, v := range kwargs {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := g.do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	switch res.StatusCode {
	case http.StatusOK:
		exc := Exception{}
		if json.Unmarshal(body, &exc) == nil && exc.Exception {
			return nil, &RemoteError{Message: exc.Message}
		}
		return json.RawMessage(body), nil
	case http.StatusNotFound:
		return nil, &NotFoundError{Err: fmt.Errorf("%v.%v: %w", object, method, ErrNotFound)}
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized: %v", strings.TrimSpace(string(body)))
	default:
		return nil, unpackError(res.StatusCode, body)
	}
}

func (g *Gateway) get(target string, out any) error {
	ctx, cancel := context.WithTimeout(g.ctx, g.t)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := g.do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	switch res.StatusCode {
	case http.StatusOK:
		return json.Unmarshal(body, out)
	case http.StatusNotFound:
		return &NotFoundError{Err: fmt.Errorf("%v: %w", target, ErrNotFound)}
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: %v", strings.TrimSpace(string(body)))
	default:
		return unpackError(res.StatusCode, body)
	}
}

func unpackError(status int, body []byte) error {
	exc := Exception{}
	if json.Unmarshal(body, &exc) == nil && len(exc.Message) > 0 {
		return errors.New(exc.Message)
	}
	return fmt.Errorf("unexpected response %v: %v", status, strings.TrimSpace(string(body)))
}
