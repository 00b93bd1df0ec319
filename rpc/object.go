package rpc

import (
	"context"
	"fmt"
	"slices"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gekatateam/parrot/metrics"
)

// Func is a remotely callable function. Arguments are bound
// to the declared names of the method, missing ones are nil.
type Func func(ctx context.Context, args []any) (any, error)

type Method struct {
	Name string
	Args []string
	Func Func
}

// Exposer is implemented by processors offering remote methods.
type Exposer interface {
	RemoteMethods() []Method
}

// Object is a named table of remote methods, ordered as declared.
type Object struct {
	Name    string
	Obs     metrics.ObserveFunc
	methods *orderedmap.OrderedMap[string, Method]
}

func NewObject(name string, methods ...Method) (*Object, error) {
	o := &Object{
		Name:    name,
		Obs:     metrics.ObserveRpcSummary,
		methods: orderedmap.New[string, Method](),
	}

	for _, m := range methods {
		if len(m.Name) == 0 {
			return nil, fmt.Errorf("%v: method name required", name)
		}
		if m.Func == nil {
			return nil, fmt.Errorf("%v.%v: method function required", name, m.Name)
		}
		if _, present := o.methods.Set(m.Name, m); present {
			return nil, &ConflictError{Err: fmt.Errorf("%v.%v: method redeclared", name, m.Name)}
		}
	}

	return o, nil
}

func (o *Object) Functions() []string {
	names := make([]string, 0, o.methods.Len())
	for pair := o.methods.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Usage returns declared argument names of a method.
func (o *Object) Usage(method string) ([]string, bool) {
	m, ok := o.methods.Get(method)
	if !ok {
		return nil, false
	}
	return slices.Clone(m.Args), true
}

// Invoke calls a method with raw string arguments, each one decoded
// as JSON or passed as is. A missing method is reported as an error,
// everything else that goes wrong is encoded as an exception payload.
func (o *Object) Invoke(ctx context.Context, method string, args []string, kwargs map[string]string) ([]byte, error) {
	positional := make([]any, len(args))
	for i, a := range args {
		positional[i] = DecodeArg(a)
	}

	keywords := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		keywords[k] = DecodeArg(v)
	}

	return o.InvokeValues(ctx, method, positional, keywords)
}

func (o *Object) InvokeValues(ctx context.Context, method string, args []any, kwargs map[string]any) ([]byte, error) {
	now := time.Now()

	m, ok := o.methods.Get(method)
	if !ok {
		o.Obs(o.Name, method, metrics.CallNotFound, time.Since(now))
		return nil, &NotFoundError{Err: fmt.Errorf("%v.%v: %w", o.Name, method, ErrNotFound)}
	}

	result, err := call(ctx, m, args, kwargs)
	if err != nil {
		o.Obs(o.Name, method, metrics.CallException, time.Since(now))
		return encodeException(err), nil
	}

	data, err := encodeResult(result)
	if err != nil {
		o.Obs(o.Name, method, metrics.CallException, time.Since(now))
		return encodeException(err), nil
	}

	o.Obs(o.Name, method, metrics.CallOk, time.Since(now))
	return data, nil
}

func call(ctx context.Context, m Method, args []any, kwargs map[string]any) (result any, err error) {
	bound, err := bind(m, args, kwargs)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%v", r)
		}
	}()

	return m.Func(ctx, bound)
}

func bind(m Method, args []any, kwargs map[string]any) ([]any, error) {
	if len(args) > len(m.Args) {
		return nil, fmt.Errorf("%v() takes %v arguments (%v given)", m.Name, len(m.Args), len(args))
	}

	bound := make([]any, len(m.Args))
	copy(bound, args)

	for k, v := range kwargs {
		i := slices.Index(m.Args, k)
		switch {
		case i < 0:
			return nil, fmt.Errorf("%v() got an unexpected keyword argument '%v'", m.Name, k)
		case i < len(args):
			return nil, fmt.Errorf("%v() got multiple values for argument '%v'", m.Name, k)
		}
		bound[i] = v
	}

	return bound, nil
}
