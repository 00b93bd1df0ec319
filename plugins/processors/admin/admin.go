package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gekatateam/parrot/config"
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/plugins"
	"github.com/gekatateam/parrot/rpc"
)

const permission = "config"

type Options struct {
	// keys matching any of these globs are never shown,
	// nil means defaultMasked
	Masked []string `mapstructure:"masked"`
}

var defaultMasked = []string{"*key*", "*password*", "*secret*", "*token*"}

// Admin manages configuration at runtime. Every handler requires
// the config permission unless configured otherwise.
type Admin struct {
	*core.BaseProcessor
	opts *config.Option[Options]
}

func (p *Admin) Defaults() core.Settings {
	s := core.DefaultSettings()
	s.Permission = permission
	return s
}

func (p *Admin) Init() error {
	opts, err := config.Bind(p.Store, p.Alias, Options{})
	if err != nil {
		return err
	}
	p.opts = opts

	if _, err := p.masker(); err != nil {
		return err
	}

	if err := p.Match("reload", `^reload\s+config(?:uration)?$`, p.reload, core.Authorise()); err != nil {
		return err
	}

	if err := p.Match("get", `^config\s+(\S+)\s+(\S+)$`, p.get, core.Authorise()); err != nil {
		return err
	}

	return p.Match("set", `^set\s+config\s+(\S+)\s+(\S+)\s+(?:to\s+)?(.+)$`, p.set, core.Authorise())
}

func (p *Admin) RemoteMethods() []rpc.Method {
	return []rpc.Method{
		{
			Name: "reload",
			Func: func(_ context.Context, _ []any) (any, error) {
				if err := p.Store.Reload(); err != nil {
					return nil, err
				}
				return true, nil
			},
		},
		{
			Name: "get",
			Args: []string{"section", "key"},
			Func: func(_ context.Context, args []any) (any, error) {
				value, ok, err := p.lookup(rpc.AsString(args[0]), rpc.AsString(args[1]))
				if err != nil || !ok {
					return nil, err
				}
				return value, nil
			},
		},
		{
			Name: "set",
			Args: []string{"section", "key", "value"},
			Func: func(_ context.Context, args []any) (any, error) {
				if err := p.Store.Set(rpc.AsString(args[0]), rpc.AsString(args[1]), args[2]); err != nil {
					return nil, err
				}
				return true, nil
			},
		},
	}
}

func (p *Admin) reload(e *core.Event, _ ...string) (*core.Event, error) {
	if err := p.Store.Reload(); err != nil {
		p.Log.Warn("configuration reload failed",
			"error", err,
		)
		e.AddResponsef("Configuration reload failed: %v", err)
		return nil, nil
	}

	p.Log.Info("configuration reloaded",
		"sender", e.Sender,
	)
	e.AddResponse("Configuration reloaded")
	return nil, nil
}

func (p *Admin) get(e *core.Event, groups ...string) (*core.Event, error) {
	section, key := groups[0], groups[1]

	value, ok, err := p.lookup(section, key)
	switch {
	case err != nil:
		e.AddResponsef("%v.%v is hidden", section, key)
	case !ok:
		e.AddResponsef("%v.%v is not set", section, key)
	default:
		e.AddResponsef("%v.%v = %v", section, key, value)
	}
	return nil, nil
}

func (p *Admin) set(e *core.Event, groups ...string) (*core.Event, error) {
	section, key, value := groups[0], groups[1], groups[2]

	if err := p.Store.Set(section, key, value); err != nil {
		e.AddResponsef("Rejected: %v", err)
		return nil, nil
	}

	p.Log.Info("configuration value changed",
		"sender", e.Sender,
		"section", section,
		"key", key,
	)
	e.AddResponsef("%v.%v set", section, key)
	return nil, nil
}

var errMasked = errors.New("value is masked")

func (p *Admin) lookup(section, key string) (any, bool, error) {
	masks, err := p.masker()
	if err != nil {
		return nil, false, err
	}

	for _, m := range masks {
		if m.Match(strings.ToLower(key)) {
			return nil, false, errMasked
		}
	}

	value, ok := p.Store.Lookup(section, key)
	return value, ok, nil
}

func (p *Admin) masker() ([]glob.Glob, error) {
	patterns := p.opts.Get().Masked
	if patterns == nil {
		patterns = defaultMasked
	}

	masks := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("masked: %v: %w", pattern, err)
		}
		masks = append(masks, g)
	}
	return masks, nil
}

func init() {
	plugins.AddProcessor("admin", func() core.Processor {
		return &Admin{}
	})
}
