package elog

import (
	"log/slog"

	"github.com/gekatateam/parrot/core"
)

func EventGroup(e *core.Event) slog.Attr {
	return slog.Group("event",
		"id", e.Id,
		"source", e.Source,
		"type", e.Type,
		"sender", e.Sender,
		"channel", e.Channel,
	)
}
