package core

import (
	"fmt"
	"regexp"
)

// HandlerFunc responds to an event. Pattern handlers get captured groups
// in declared order, unmatched optional groups are empty strings.
// A non-nil returned event replaces the event for handlers that follow.
type HandlerFunc func(e *Event, groups ...string) (*Event, error)

type Handler struct {
	Name       string
	Pattern    *regexp.Regexp // nil for handlers that see every event
	Authorised bool

	fn HandlerFunc
}

type HandlerOption func(h *Handler)

// Authorise makes the handler require the processor permission.
func Authorise() HandlerOption {
	return func(h *Handler) {
		h.Authorised = true
	}
}

// Handle registers a handler that is called for every event passing processor filters.
func (b *BaseProcessor) Handle(name string, fn HandlerFunc) {
	b.handlers = append(b.handlers, &Handler{
		Name: name,
		fn:   fn,
	})
}

// Match registers a handler triggered by a case-insensitive pattern over the event message.
func (b *BaseProcessor) Match(name, expr string, fn HandlerFunc, opts ...HandlerOption) error {
	pattern, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return fmt.Errorf("handler %v pattern compilation failed: %w", name, err)
	}

	h := &Handler{
		Name:    name,
		Pattern: pattern,
		fn:      fn,
	}

	for _, o := range opts {
		o(h)
	}

	b.handlers = append(b.handlers, h)
	return nil
}

// Handlers returns the registration table in declaration order.
func (b *BaseProcessor) Handlers() []Handler {
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, *h)
	}
	return handlers
}
