package rpc

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const maxRequestBody = 1 << 20

type restApi struct {
	r   *Registry
	log *slog.Logger
}

func Rest(r *Registry, log *slog.Logger) *restApi {
	return &restApi{r: r, log: log}
}

func (a *restApi) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Method(http.MethodGet, "/", a.Objects())
	router.Method(http.MethodGet, "/{object}", a.List())
	router.Method(http.MethodGet, "/{object}/", a.List())
	router.Method(http.MethodGet, "/{object}/{method}", a.Get())
	router.Method(http.MethodGet, "/{object}/{method}/*", a.Get())
	router.Method(http.MethodPost, "/{object}/{method}", a.Post())
	router.Method(http.MethodPost, "/{object}/{method}/*", a.Post())
	return router
}

// GET /
func (a *restApi) Objects() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(a.r.Names())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	})
}

// GET /{object}
func (a *restApi) List() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, ok := a.r.Lookup(chi.URLParam(r, "object"))
		if !ok {
			notFound(w)
			return
		}
		a.listing(w, r, o)
	})
}

// GET /{object}/{method}/*
func (a *restApi) Get() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, ok := a.r.Lookup(chi.URLParam(r, "object"))
		if !ok {
			notFound(w)
			return
		}

		method := chi.URLParam(r, "method")
		args, ok := o.Usage(method)
		if !ok {
			a.listing(w, r, o)
			return
		}

		if err := r.ParseForm(); err != nil {
			badRequest(w, err)
			return
		}

		if len(args) > 0 && len(pathArgs(r)) == 0 && len(r.Form) == 0 {
			a.render(w, r, formTemplate, usageModel{
				Object: o.Name,
				Method: method,
				Args:   args,
				Action: r.URL.Path,
			})
			return
		}

		a.invoke(w, r, o, method)
	})
}

// POST /{object}/{method}/*
func (a *restApi) Post() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, ok := a.r.Lookup(chi.URLParam(r, "object"))
		if !ok {
			notFound(w)
			return
		}
		a.invoke(w, r, o, chi.URLParam(r, "method"))
	})
}

func (a *restApi) invoke(w http.ResponseWriter, r *http.Request, o *Object, method string) {
	args := pathArgs(r)

	var (
		data []byte
		err  error
	)

	if isJson(r.Header.Get("Content-Type")) {
		positional, keywords, jerr := readJsonBody(r.Body)
		if jerr != nil {
			badRequest(w, jerr)
			return
		}

		values := make([]any, 0, len(args)+len(positional))
		for _, arg := range args {
			values = append(values, DecodeArg(arg))
		}
		values = append(values, positional...)
		data, err = o.InvokeValues(r.Context(), method, values, keywords)
	} else {
		if perr := r.ParseForm(); perr != nil {
			badRequest(w, perr)
			return
		}

		kwargs := make(map[string]string, len(r.Form))
		for k, v := range r.Form {
			if len(v) > 0 {
				kwargs[k] = v[0]
			}
		}
		data, err = o.Invoke(r.Context(), method, args, kwargs)
	}

	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	case errors.As(err, &NotFoundErr):
		notFound(w)
	default:
		a.log.Error("rpc call failed",
			"path", r.URL.Path,
			"error", err,
		)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(encodeException(err))
	}
}

func (a *restApi) listing(w http.ResponseWriter, r *http.Request, o *Object) {
	base := mountPrefix(r) + "/" + url.PathEscape(o.Name)

	functions := o.Functions()
	args := make(map[string][]string, len(functions))
	for _, f := range functions {
		usage, _ := o.Usage(f)
		if usage == nil {
			usage = []string{}
		}
		args[f] = usage
	}

	a.render(w, r, listingTemplate, listingModel{
		Object:    o.Name,
		Functions: functions,
		Args:      args,
		Base:      base,
	})
}

func (a *restApi) render(w http.ResponseWriter, r *http.Request, t *template.Template, model any) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		data, _ := json.Marshal(model)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := t.Execute(w, model); err != nil {
		a.log.Error("template execution failed",
			"template", t.Name(),
			"error", err,
		)
	}
}

// mountPrefix is the part of the request path consumed by parent
// routers, empty when the api router is the root one.
func mountPrefix(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.RoutePath) == 0 {
		return ""
	}
	return strings.TrimSuffix(r.URL.EscapedPath(), rctx.RoutePath)
}

// pathArgs splits the path tail into positional arguments. Inner empty
// segments are empty strings; a single trailing slash adds nothing.
func pathArgs(r *http.Request) []string {
	rest := chi.URLParam(r, "*")
	if len(rest) == 0 {
		return nil
	}

	segments := strings.Split(rest, "/")
	if len(segments[len(segments)-1]) == 0 {
		segments = segments[:len(segments)-1]
	}

	args := make([]string, 0, len(segments))
	for _, s := range segments {
		if u, err := url.PathUnescape(s); err == nil {
			s = u
		}
		args = append(args, s)
	}
	return args
}

func readJsonBody(body io.Reader) ([]any, map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxRequestBody))
	if err != nil {
		return nil, nil, err
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil, nil
	}

	switch v := DecodeArg(string(raw)).(type) {
	case map[string]any:
		return nil, v, nil
	case []any:
		return v, nil, nil
	default:
		return nil, nil, errors.New("request body must be a JSON object or array")
	}
}

func isJson(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(ErrNotFound.Error()))
}

func badRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte(err.Error()))
}
