package core

import (
	"context"
	"io"
)

type Initer interface {
	Init() error
}

// Processor bundles related handlers under shared addressing,
// reprocessing and priority policy.
type Processor interface {
	Name() string
	Priority() int
	Process(e *Event) (*Event, error)
	Handlers() []Handler
	Initer
}

// processors that override standard option defaults must implement this interface
type Defaulter interface {
	Defaults() Settings
}

// Authoriser decides whether the event sender holds a permission.
type Authoriser interface {
	Authorise(e *Event, permission string) bool
}

// Dispatcher runs an event through the processors chain.
type Dispatcher interface {
	Dispatch(e *Event) *Event
}

// input plugin turns outer world messages into events
// and delivers replies back
type Input interface {
	Run(ctx context.Context, d Dispatcher) error
	io.Closer
	Initer
}
