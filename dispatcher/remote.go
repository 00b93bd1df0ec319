package dispatcher

import (
	"context"

	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/rpc"
)

const (
	RemoteObject = "bot"
	RemoteSource = "rpc"
)

type processorInfo struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Handlers int    `json:"handlers"`
}

// Remote exposes the dispatcher itself: messages can be sent to the bot
// over rpc as if they came from a private chat.
//
// The sender is always source-qualified, "rpc" or "rpc:<user>" for
// authenticated callers, so only auth globs written for rpc match it.
func Remote(d *Dispatcher) (*rpc.Object, error) {
	return rpc.NewObject(RemoteObject,
		rpc.Method{
			Name: "message",
			Args: []string{"text"},
			Func: func(ctx context.Context, args []any) (any, error) {
				e := core.NewEvent(RemoteSource, core.EventMessage)
				e.ReplaceContext(ctx)
				e.Message = rpc.AsString(args[0])
				e.Sender = RemoteSource
				if caller, ok := rpc.Caller(ctx); ok && len(caller) > 0 {
					e.Sender = RemoteSource + ":" + caller
				}
				e.Channel = e.Sender
				e.Addressed = true

				return d.Dispatch(e).Replies(), nil
			},
		},
		rpc.Method{
			Name: "processors",
			Func: func(_ context.Context, _ []any) (any, error) {
				stats := d.Stats()
				info := make([]processorInfo, 0, len(stats))
				for _, s := range stats {
					info = append(info, processorInfo(s))
				}
				return info, nil
			},
		},
	)
}
