package ping

import (
	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/plugins"
)

type Ping struct {
	*core.BaseProcessor
}

func (p *Ping) Init() error {
	return p.Match("ping", `^ping$`, p.pong)
}

func (p *Ping) pong(e *core.Event, _ ...string) (*core.Event, error) {
	e.AddResponse("pong")
	return nil, nil
}

func init() {
	plugins.AddProcessor("ping", func() core.Processor {
		return &Ping{}
	})
}
