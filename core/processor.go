package core

import (
	"time"

	"github.com/gekatateam/parrot/metrics"
)

// Process runs event through processor filters and handlers.
//
// A nil event with nil error means the processor skipped the event.
// Handlers run in declaration order; a handler error stops the pass
// and is returned to the caller along with the current event.
func (b *BaseProcessor) Process(e *Event) (*Event, error) {
	s := b.settings.Get()

	if e.Type != s.Type {
		return nil, nil
	}

	if s.Addressed && !e.Addressed {
		return nil, nil
	}

	if !s.Processed && e.Processed {
		return nil, nil
	}

	if len(b.handlers) == 0 {
		return nil, &ConfigurationError{Processor: b.Alias, Err: ErrNoHandlers}
	}

	for _, h := range b.handlers {
		var groups []string
		if h.Pattern != nil {
			match := h.Pattern.FindStringSubmatch(e.Message)
			if match == nil {
				continue
			}
			groups = match[1:]

			if h.Authorised && !b.authorise(e, s) {
				b.Log.Debug("handler refused, sender not authorised",
					"handler", h.Name,
					"sender", e.Sender,
				)
				b.Observe(h.Name, metrics.EventRejected, 0)
				continue
			}
		}

		now := time.Now()
		out, err := h.fn(e, groups...)
		if err != nil {
			b.Observe(h.Name, metrics.EventFailed, time.Since(now))
			return e, &HandlerError{Processor: b.Alias, Handler: h.Name, Err: err}
		}
		b.Observe(h.Name, metrics.EventAccepted, time.Since(now))

		if out != nil {
			e = out
		}
	}

	return e, nil
}

func (b *BaseProcessor) authorise(e *Event, s Settings) bool {
	permission := s.Permission
	if len(permission) == 0 {
		permission = b.Alias
	}

	if b.Auth == nil || !b.Auth.Authorise(e, permission) {
		e.NotAuthed = true
		return false
	}

	return true
}
